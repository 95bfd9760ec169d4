package main

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/phase/frontend"
)

func newCodeCommand(ro *rootOptions) *cobra.Command {
	var opts frontend.CodingOptions
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate the React components and project scaffold",
		Long: `Code generates each component with its own model call and writes the
project to {output_repo_dir}/{project_name}_frontend. A component that fails
is reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.open(cmd, opts.Model, validated(opts))
			if err != nil {
				return err
			}
			res, err := frontend.NewImplementer(s.env).Run(cmd.Context(), opts)
			return s.finish(opts.OutputDir, res, err)
		},
	}
	addStageFlags(cmd, &opts.Options, modelDefaults{"o3-mini", 0.2, 3000})
	cmd.Flags().StringVar(&opts.OutputRepoDir, "output_repo_dir", ".", "Directory the project is created in")
	return cmd
}
