package main

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/phase/frontend"
)

func newTestCommand(ro *rootOptions) *cobra.Command {
	var (
		opts      frontend.TestingOptions
		testTypes string
	)
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Generate test suites for the generated project",
		Long: `Test makes one model call per test category (unit, integration, e2e,
accessibility) and saves the suites under src/__tests__/{category}. The
runner configuration for --test_framework is written alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TestTypes = frontend.SplitList(testTypes)
			s, err := ro.open(cmd, opts.Model, validated(opts))
			if err != nil {
				return err
			}
			res, err := frontend.NewTester(s.env).Run(cmd.Context(), opts)
			return s.finish(opts.OutputDir, res, err)
		},
	}
	addStageFlags(cmd, &opts.Options, modelDefaults{"gpt-4", 0.2, 6000})
	f := cmd.Flags()
	f.StringVar(&opts.ProjectPath, "project_path", "", "Generated project (default {output_repo_dir}/{project_name}_frontend)")
	f.StringVar(&opts.OutputRepoDir, "output_repo_dir", ".", "Directory holding the generated project")
	f.StringVar(&testTypes, "test_types", "unit,integration", "Comma-separated categories: unit, integration, e2e, accessibility")
	f.StringVar(&opts.Framework, "test_framework", "jest", "Test runner: jest | vitest")
	f.IntVar(&opts.CoverageThreshold, "coverage_threshold", 80, "Required coverage percentage")
	f.BoolVar(&opts.IncludeAccessibility, "include_accessibility", true, "Also generate accessibility tests")
	return cmd
}
