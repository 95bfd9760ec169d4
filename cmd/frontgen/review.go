package main

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/config"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/phase/frontend"
)

func newReviewCommand(ro *rootOptions) *cobra.Command {
	var (
		opts  frontend.ReviewOptions
		focus string
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the generated project's sources",
		Long: `Review sends every source file under src/ to the model in a single request
and prints the review, or writes it to --output_file.

Focus areas: performance, accessibility, security, maintainability, testing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Focus = frontend.SplitList(focus)
			s, err := ro.open(cmd, opts.Model, func(cfg *config.Config) error {
				opts.PreviewChars = cfg.Limits.ReviewPreviewChars
				return phase.Validate(opts)
			})
			if err != nil {
				return err
			}
			res, err := frontend.NewReviewer(s.env).Run(cmd.Context(), opts)
			return s.finish(opts.OutputDir, res, err)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.ProjectPath, "project_path", "", "Generated project to review (required)")
	f.StringVar(&opts.OutputDir, "output_dir", ".", "Directory holding the cost ledger")
	f.StringVar(&focus, "review_focus", "performance,accessibility,security", "Comma-separated focus areas")
	f.StringVar(&opts.OutputFormat, "output_format", frontend.FormatMarkdown, "Output format: markdown | json")
	f.StringVar(&opts.OutputFile, "output_file", "", "Write the review here instead of stdout")
	addModelFlags(cmd, &opts.ModelOptions, modelDefaults{"gpt-4", 0.1, 6000})
	return cmd
}
