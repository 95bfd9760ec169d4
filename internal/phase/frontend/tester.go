package frontend

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/extract"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/scaffold"
	"github.com/dotcommander/frontgen/internal/storage"
	"github.com/dotcommander/frontgen/internal/trajectory"
)

// Test categories, in generation order.
const (
	CategoryUnit          = "unit"
	CategoryIntegration   = "integration"
	CategoryE2E           = "e2e"
	CategoryAccessibility = "accessibility"
)

var categoryOrder = []string{CategoryUnit, CategoryIntegration, CategoryE2E, CategoryAccessibility}

// TestsDir holds one subdirectory per category.
const TestsDir = "src/__tests__"

var specializations = map[string]string{
	CategoryE2E:           "Specialize in end-to-end testing using Playwright or Cypress for complete user journey validation.",
	CategoryAccessibility: "Specialize in accessibility testing using jest-axe and manual accessibility validation.",
}

var instructions = map[string]string{
	CategoryUnit:          "Generate comprehensive unit tests for all React components and utilities. Use %s and React Testing Library.",
	CategoryIntegration:   "Generate comprehensive integration tests that verify component interactions and data flow. Use %s and React Testing Library.",
	CategoryE2E:           "Generate comprehensive end-to-end tests that validate complete user journeys. Use %s and React Testing Library.",
	CategoryAccessibility: "Generate comprehensive accessibility tests for WCAG 2.1 AA compliance. Use %s and React Testing Library.",
}

// Categories returns the requested categories in generation order. Unknown
// names are ignored; accessibility is added when includeAccessibility is set.
func Categories(testTypes []string, includeAccessibility bool) []string {
	requested := make(map[string]bool, len(testTypes))
	for _, t := range testTypes {
		requested[strings.ToLower(strings.TrimSpace(t))] = true
	}
	if includeAccessibility {
		requested[CategoryAccessibility] = true
	}

	var categories []string
	for _, c := range categoryOrder {
		if requested[c] {
			categories = append(categories, c)
		}
	}
	return categories
}

// TestingOptions configure the test generation stage.
type TestingOptions struct {
	phase.Options
	OutputRepoDir        string   `flag:"output_repo_dir"`
	ProjectPath          string   `flag:"project_path"`
	TestTypes            []string `flag:"test_types"`
	Framework            string   `flag:"test_framework" validate:"required,oneof=jest vitest"`
	CoverageThreshold    int      `flag:"coverage_threshold" validate:"gte=0,lte=100"`
	IncludeAccessibility bool     `flag:"include_accessibility"`
}

// ResolvedProjectPath is ProjectPath, or {OutputRepoDir}/{ProjectName}_frontend.
func (o TestingOptions) ResolvedProjectPath() string {
	if o.ProjectPath != "" {
		return o.ProjectPath
	}
	return scaffold.ProjectDir(o.OutputRepoDir, o.ProjectName)
}

// ProjectStructure lists the sources the test prompts describe.
type ProjectStructure struct {
	Components []string
	Pages      []string
	Utils      []string
}

// TestingSummary is written to testing_summary.json.
type TestingSummary struct {
	ProjectName      string   `json:"project_name"`
	TestFramework    string   `json:"test_framework"`
	Categories       []string `json:"categories"`
	FailedCategories []string `json:"failed_categories"`
	SavedFiles       []string `json:"saved_files"`
	RunID            string   `json:"run_id"`
}

// Tester generates test suites for an existing generated project.
type Tester struct {
	phase.BasePhase
	env      phase.Env
	recorder *phase.Recorder
}

func NewTester(env phase.Env) *Tester {
	return &Tester{
		BasePhase: phase.NewBasePhase("testing", env),
		env:       env,
		recorder:  phase.NewRecorder(env.Stdout),
	}
}

// Run makes one model call per category. A failed category is recorded and
// the others continue.
func (t *Tester) Run(ctx context.Context, opts TestingOptions) (*phase.Result, error) {
	start := time.Now()
	in, err := loadInputs(ctx, t.BasePhase, opts, opts.Options)
	if err != nil {
		return nil, err
	}

	project := storage.NewFileSystem(opts.ResolvedProjectPath())
	if !project.Exists(ctx, ".") {
		return nil, t.CreatePhaseError("load_inputs", fmt.Errorf("%w: %s", core.ErrProjectNotFound, project.Root()))
	}
	projectPath := project.Root()
	categories := Categories(opts.TestTypes, opts.IncludeAccessibility)
	t.LogStart("project", opts.ProjectName, "model", opts.Model, "categories", categories)

	out := t.env.Stdout
	fmt.Fprintln(out, "🧪 Test Generator")
	fmt.Fprintln(out, "=====================================")
	fmt.Fprintf(out, "📁 Project: %s\n", opts.ProjectName)
	fmt.Fprintf(out, "🤖 Model: %s\n", t.env.Client.Model())
	fmt.Fprintf(out, "📍 Project Path: %s\n", projectPath)
	fmt.Fprintf(out, "🧾 Test Types: %s\n", strings.Join(categories, ","))
	fmt.Fprintf(out, "🎯 Coverage Target: %d%%\n", opts.CoverageThreshold)
	fmt.Fprintln(out, "=====================================")

	fmt.Fprintln(out, "\n📊 Analyzing project structure...")
	structure, err := ScanProject(ctx, project)
	if err != nil {
		return nil, t.CreatePhaseError("load_inputs", err)
	}
	fmt.Fprintf(out, "Found %d components, %d pages\n", len(structure.Components), len(structure.Pages))

	res := &phase.Result{Ledger: in.ledger}
	results := make(map[string]*string, len(categories))
	var (
		failed []string
		turns  []trajectory.Turn
	)

	fmt.Fprintln(out, "🚀 Generating test suites...")
	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return res, t.CreatePhaseError("invoke_model", err)
		}
		fmt.Fprintf(out, "\n🧪 Generating %s tests...\n", category)

		system, user, err := t.prompts(opts, category, in.doc.String(), structure)
		if err != nil {
			return res, t.CreatePhaseError("build_prompt", err)
		}

		response, err := t.Invoke(ctx, t.env, &res.Ledger, system, user, opts.Params())
		if err != nil {
			fmt.Fprintf(out, "❌ Failed to generate %s tests: %v\n", category, err)
			t.Logger().Warn("category generation failed", "category", category, "error", err)
			results[category] = nil
			failed = append(failed, category)
			continue
		}
		results[category] = &response
		turns = append(turns, trajectory.Pair(user, response)...)
		fmt.Fprintf(out, "✅ %s tests generated successfully\n", strings.ToUpper(category[:1])+category[1:])

		transcript := filepath.Join(opts.OutputDir, fmt.Sprintf("testing_%s_response.md", category))
		if err := t.recorder.Record(response, transcript); err != nil {
			t.Logger().Warn("transcript not saved", "category", category, "error", err)
		}
	}

	fmt.Fprintln(out, "\n💾 Saving test files...")
	saved, err := t.saveTests(ctx, project, categories, results)
	if err != nil {
		return res, t.CreatePhaseError("persist_state", err)
	}
	res.Files = append(res.Files, saved...)

	fmt.Fprintln(out, "\n⚙️ Generating test configuration...")
	if configFiles, err := scaffold.TestConfig(opts.Framework, opts.CoverageThreshold); err != nil {
		fmt.Fprintf(out, "❌ Failed to generate config files: %v\n", err)
		t.Logger().Warn("test config not generated", "error", err)
	} else if err := scaffold.WriteFiles(ctx, project, configFiles); err != nil {
		fmt.Fprintf(out, "❌ Failed to generate config files: %v\n", err)
		t.Logger().Warn("test config not written", "error", err)
	} else {
		for _, f := range configFiles {
			res.Files = append(res.Files, f.Path)
		}
		fmt.Fprintln(out, "📋 Test configuration files generated")
	}

	if _, err := trajectory.AppendAndSave(filepath.Join(opts.OutputDir, trajectory.CodingFile), turns,
		filepath.Join(opts.OutputDir, trajectory.TestingFile)); err != nil {
		return res, t.CreatePhaseError("persist_state", err)
	}

	summary := TestingSummary{
		ProjectName:      opts.ProjectName,
		TestFramework:    opts.Framework,
		Categories:       nonNil(categories),
		FailedCategories: nonNil(failed),
		SavedFiles:       nonNil(saved),
		RunID:            t.env.RunID,
	}
	if err := writeJSON(filepath.Join(opts.OutputDir, "testing_summary.json"), summary); err != nil {
		return res, t.CreatePhaseError("persist_state", err)
	}

	fmt.Fprintf(out, "\n🎉 Test Generation Completed!\n")
	fmt.Fprintln(out, "=====================================")
	fmt.Fprintf(out, "📁 Test files generated: %d\n", len(saved))
	printTotal(out, "Total accumulated cost", res.Ledger, t.env.Client.Priced())
	fmt.Fprintln(out, "=====================================")
	fmt.Fprintf(out, "\n🚀 To run your tests:\n   cd %s\n   npm test\n", projectPath)
	fmt.Fprintf(out, "\n📊 To check coverage:\n   npm test -- --coverage\n")

	t.LogComplete(time.Since(start), "saved_files", len(saved), "failed_categories", failed)
	return res, nil
}

func (t *Tester) prompts(opts TestingOptions, category, requirements string, structure ProjectStructure) (string, string, error) {
	return renderPair("testing",
		struct {
			Framework         string
			CoverageThreshold int
			Accessibility     bool
			Specialization    string
		}{opts.Framework, opts.CoverageThreshold, opts.IncludeAccessibility, specializations[category]},
		struct {
			ProjectName  string
			Requirements string
			Structure    struct{ Components, Pages, Utils string }
			Instruction  string
		}{
			ProjectName:  opts.ProjectName,
			Requirements: requirements,
			Structure: struct{ Components, Pages, Utils string }{
				listing(structure.Components), listing(structure.Pages), listing(structure.Utils),
			},
			Instruction: fmt.Sprintf(instructions[category], opts.Framework),
		},
	)
}

// saveTests writes each category's extracted files under TestsDir/{category}.
// A file that cannot be written is reported and skipped.
func (t *Tester) saveTests(ctx context.Context, project storage.Storage, categories []string, results map[string]*string) ([]string, error) {
	dirs := make([]string, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		dirs = append(dirs, path.Join(TestsDir, c))
	}
	if err := project.EnsureDirs(ctx, dirs...); err != nil {
		return nil, err
	}

	out := t.env.Stdout
	var saved []string
	for _, category := range categories {
		content := results[category]
		if content == nil {
			continue
		}
		for _, f := range extract.TestFiles(*content, category) {
			rel := path.Join(TestsDir, category, f.Name)
			if err := project.Save(ctx, rel, []byte(f.Content)); err != nil {
				fmt.Fprintf(out, "❌ Failed to save %s: %v\n", f.Name, err)
				t.Logger().Warn("test file not saved", "path", rel, "error", err)
				continue
			}
			saved = append(saved, rel)
			fmt.Fprintf(out, "📝 Saved: %s\n", rel)
		}
	}
	return saved, nil
}

// ScanProject lists component and page .tsx files and utility .ts files.
func ScanProject(ctx context.Context, project storage.Storage) (ProjectStructure, error) {
	var s ProjectStructure
	var err error
	if s.Components, err = project.List(ctx, "src/components/**/*.tsx"); err != nil {
		return s, err
	}
	if s.Pages, err = project.List(ctx, "src/pages/**/*.tsx"); err != nil {
		return s, err
	}
	if s.Utils, err = project.List(ctx, "src/utils/**/*.ts"); err != nil {
		return s, err
	}
	return s, nil
}

func listing(paths []string) string {
	return "[" + strings.Join(paths, ", ") + "]"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
