package main

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/phase/frontend"
)

func newPlanCommand(ro *rootOptions) *cobra.Command {
	var opts phase.Options
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Draft a frontend development plan from the requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.open(cmd, opts.Model, validated(opts))
			if err != nil {
				return err
			}
			res, err := frontend.NewPlanner(s.env).Run(cmd.Context(), opts)
			return s.finish(opts.OutputDir, res, err)
		},
	}
	addStageFlags(cmd, &opts, modelDefaults{"o3-mini", 0.7, 4000})
	return cmd
}
