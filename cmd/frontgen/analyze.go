package main

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/phase/frontend"
)

func newAnalyzeCommand(ro *rootOptions) *cobra.Command {
	var opts phase.Options
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Turn the plan into component-level technical specifications",
		Long: `Analyze reads planning_trajectories.json from --output_dir and writes
analysis_response.md and analysis_trajectories.json. An optional
planning_config.yaml in the same directory is passed to the model as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.open(cmd, opts.Model, validated(opts))
			if err != nil {
				return err
			}
			res, err := frontend.NewAnalyzer(s.env).Run(cmd.Context(), opts)
			return s.finish(opts.OutputDir, res, err)
		},
	}
	addStageFlags(cmd, &opts, modelDefaults{"o3-mini", 0.3, 6000})
	return cmd
}
