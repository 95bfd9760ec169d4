package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/frontgen/internal/agent"
	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
	"github.com/dotcommander/frontgen/internal/logging"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/trajectory"
)

const sampleRequirements = "# Shop\n\nA storefront with a dashboard and material ui styling.\n"

type fixture struct {
	dir    string
	client *agent.MockClient
	stdout *bytes.Buffer
	env    phase.Env
}

func newFixture(t *testing.T, model string, responses ...agent.MockResponse) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.md"), []byte(sampleRequirements), 0644))

	client := agent.NewMockClient(model, responses...)
	stdout := &bytes.Buffer{}
	return &fixture{
		dir:    dir,
		client: client,
		stdout: stdout,
		env: phase.Env{
			Client: client,
			Stdout: stdout,
			Logger: logging.Discard(),
			RunID:  "run-1",
			Rates:  ledger.DefaultRates,
		},
	}
}

func (f *fixture) options(model string, temperature float64, maxTokens int) phase.Options {
	return phase.Options{
		ProjectName:        "shop",
		RequirementsPath:   filepath.Join(f.dir, "requirements.md"),
		RequirementsFormat: "markdown",
		OutputDir:          filepath.Join(f.dir, "out"),
		ModelOptions:       phase.ModelOptions{Model: model, Temperature: temperature, MaxTokens: maxTokens},
	}
}

func readTurns(t *testing.T, path string) []trajectory.Turn {
	t.Helper()
	turns, err := trajectory.Read(path)
	require.NoError(t, err)
	return turns
}

func TestPlannerRun(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{
		Content: "## Plan\nUse React Router.",
		Usage:   ledger.Usage{PromptTokens: 1000, CompletionTokens: 1000},
	})
	opts := f.options("gpt-4", 0.7, 4000)

	res, err := NewPlanner(f.env).Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, f.client.Calls, 1)
	call := f.client.Calls[0]
	assert.Equal(t, agent.Params{Temperature: 0.7, MaxTokens: 4000}, call.Params)
	assert.Contains(t, call.UserPrompt, "shop")
	assert.Contains(t, call.UserPrompt, "A storefront with a dashboard")

	saved, err := os.ReadFile(filepath.Join(opts.OutputDir, "planning_response.md"))
	require.NoError(t, err)
	assert.Equal(t, "## Plan\nUse React Router.", string(saved))

	turns := readTurns(t, filepath.Join(opts.OutputDir, trajectory.PlanningFile))
	require.Len(t, turns, 2)
	assert.Equal(t, call.UserPrompt, turns[0].Content)
	assert.Equal(t, trajectory.RoleAssistant, turns[1].Role)

	assert.InDelta(t, 0.09, res.Ledger.TotalCost, 1e-9)
	assert.Equal(t, 2000, res.Ledger.TotalTokens)
	assert.Contains(t, f.stdout.String(), "Planning completed successfully")
	assert.Contains(t, f.stdout.String(), "💰 Total accumulated cost: $0.0900")
}

func TestPlannerRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t, "o3-mini", agent.MockResponse{Content: "plan"})
	opts := f.options("o3-mini", 0.7, 4000)
	opts.RequirementsFormat = "yaml"

	_, err := NewPlanner(f.env).Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Empty(t, f.client.Calls)
}

func TestPlannerModelFailure(t *testing.T) {
	f := newFixture(t, "o3-mini", agent.MockResponse{Err: errors.New("upstream 500")})
	opts := f.options("o3-mini", 0.7, 4000)

	res, err := NewPlanner(f.env).Run(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, res)

	var phaseErr *core.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, "invoke_model", phaseErr.Step)
	assert.NoFileExists(t, filepath.Join(opts.OutputDir, trajectory.PlanningFile))
}

func TestAnalyzerUsesMostRecentPlanningOutput(t *testing.T) {
	f := newFixture(t, "o3-mini", agent.MockResponse{Content: "analysis"})
	opts := f.options("o3-mini", 0.3, 6000)
	require.NoError(t, os.MkdirAll(opts.OutputDir, 0755))

	prior := append(trajectory.Pair("p1", "<think>draft</think>first plan"), trajectory.Pair("p2", "second plan")...)
	require.NoError(t, trajectory.Write(filepath.Join(opts.OutputDir, trajectory.PlanningFile), prior))

	_, err := NewAnalyzer(f.env).Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, f.client.Calls, 1)
	user := f.client.Calls[0].UserPrompt
	assert.Contains(t, user, "Planning Output:\nsecond plan")
	assert.NotContains(t, user, "Planning Configuration")

	turns := readTurns(t, filepath.Join(opts.OutputDir, trajectory.AnalysisFile))
	require.Len(t, turns, 6)
	assert.Equal(t, "second plan", turns[3].Content)
	assert.Equal(t, "analysis", turns[5].Content)
}

func TestAnalyzerWithoutPlanning(t *testing.T) {
	f := newFixture(t, "o3-mini", agent.MockResponse{Content: "analysis"})
	opts := f.options("o3-mini", 0.3, 6000)
	require.NoError(t, os.MkdirAll(opts.OutputDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.OutputDir, PlanningConfigFile), []byte("theme: dark\n"), 0644))

	_, err := NewAnalyzer(f.env).Run(context.Background(), opts)
	require.NoError(t, err)

	user := f.client.Calls[0].UserPrompt
	assert.Contains(t, user, "No planning context available")
	assert.Contains(t, user, "Planning Configuration:\ntheme: dark")

	turns := readTurns(t, filepath.Join(opts.OutputDir, trajectory.AnalysisFile))
	assert.Len(t, turns, 2)
}

func TestAnalyzerIgnoresMalformedPlanningConfig(t *testing.T) {
	f := newFixture(t, "o3-mini", agent.MockResponse{Content: "analysis"})
	opts := f.options("o3-mini", 0.3, 6000)
	require.NoError(t, os.MkdirAll(opts.OutputDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.OutputDir, PlanningConfigFile), []byte("theme: [dark"), 0644))

	_, err := NewAnalyzer(f.env).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.NotContains(t, f.client.Calls[0].UserPrompt, "Planning Configuration")
}

func TestImplementerContinuesAfterFailedComponent(t *testing.T) {
	component := agent.MockResponse{
		Content: "Here it is:\n```tsx\nexport default function C() { return <div />; }\n```\n",
		Usage:   ledger.Usage{PromptTokens: 100, CompletionTokens: 100},
	}
	f := newFixture(t, "o3-mini",
		component,
		agent.MockResponse{Err: errors.New("rate limited")},
		component,
	)
	opts := CodingOptions{
		Options:       f.options("o3-mini", 0.2, 3000),
		OutputRepoDir: filepath.Join(f.dir, "repo"),
	}
	require.NoError(t, os.MkdirAll(opts.OutputDir, 0755))
	require.NoError(t, trajectory.Write(filepath.Join(opts.OutputDir, trajectory.AnalysisFile),
		trajectory.Pair("analyze", "component specs")))

	res, err := NewImplementer(f.env).Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, f.client.Calls, len(Components))
	assert.Contains(t, f.client.Calls[0].UserPrompt, "Technical Analysis:\ncomponent specs")
	assert.Contains(t, f.client.Calls[0].SystemPrompt, "App")

	project := filepath.Join(opts.OutputRepoDir, "shop_frontend")
	app, err := os.ReadFile(filepath.Join(project, "src/App.tsx"))
	require.NoError(t, err)
	assert.Equal(t, "export default function C() { return <div />; }", string(app))
	assert.NoFileExists(t, filepath.Join(project, "src/components/Layout.tsx"))
	assert.FileExists(t, filepath.Join(project, "src/pages/Dashboard.tsx"))
	assert.FileExists(t, filepath.Join(project, "package.json"))
	assert.FileExists(t, filepath.Join(project, "public/index.html"))
	assert.DirExists(t, filepath.Join(project, "src/hooks"))

	readme, err := os.ReadFile(filepath.Join(project, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "Header")
	assert.NotContains(t, string(readme), "Layout")

	assert.Contains(t, f.stdout.String(), "❌ Error generating Layout")
	assert.Contains(t, f.stdout.String(), "✅ Generated Header component")

	var summary GenerationSummary
	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "generation_summary.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 4, summary.GeneratedComponents)
	assert.Equal(t, []string{"App", "Header", "Sidebar", "Dashboard"}, summary.Components)
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 800, res.Ledger.TotalTokens)

	turns := readTurns(t, filepath.Join(opts.OutputDir, trajectory.CodingFile))
	assert.Len(t, turns, 2+4*2)

	transcripts, err := filepath.Glob(filepath.Join(opts.OutputDir, "coding_*_response.md"))
	require.NoError(t, err)
	assert.Len(t, transcripts, 4)
}

func TestCategories(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		a11y  bool
		want  []string
	}{
		{"fixed order", []string{"e2e", "unit"}, false, []string{"unit", "e2e"}},
		{"accessibility flag", []string{"unit", "integration"}, true, []string{"unit", "integration", "accessibility"}},
		{"unknown ignored", []string{"smoke", " Unit "}, false, []string{"unit"}},
		{"nothing", nil, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categories(tt.types, tt.a11y))
		})
	}
}

func newProject(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestTesterRun(t *testing.T) {
	f := newFixture(t, "gpt-4",
		agent.MockResponse{Content: "```tsx\n// Header.test.tsx\ntest('renders', () => {});\n```"},
		agent.MockResponse{Err: errors.New("timeout")},
		agent.MockResponse{Content: "```tsx\n// Header.a11y.test.tsx\ntest('axe', () => {});\n```"},
	)
	opts := TestingOptions{
		Options:              f.options("gpt-4", 0.2, 6000),
		OutputRepoDir:        filepath.Join(f.dir, "repo"),
		TestTypes:            []string{"unit", "integration", "smoke"},
		Framework:            "jest",
		CoverageThreshold:    80,
		IncludeAccessibility: true,
	}
	project := opts.ResolvedProjectPath()
	newProject(t, project, map[string]string{
		"src/components/Header.tsx": "export const Header = () => null;",
		"src/pages/Dashboard.tsx":   "export default () => null;",
	})

	res, err := NewTester(f.env).Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, f.client.Calls, 3)
	unit := f.client.Calls[0]
	assert.Contains(t, unit.UserPrompt, "Components: [src/components/Header.tsx]")
	assert.Contains(t, unit.UserPrompt, "Utils: []")
	assert.Contains(t, unit.UserPrompt, "Use jest and React Testing Library")
	assert.Contains(t, unit.SystemPrompt, "Coverage Threshold: 80%")
	assert.NotContains(t, unit.SystemPrompt, "Specialize in")
	assert.Contains(t, f.client.Calls[2].SystemPrompt, "jest-axe")

	assert.FileExists(t, filepath.Join(project, "src/__tests__/unit/Header.test.tsx"))
	assert.FileExists(t, filepath.Join(project, "src/__tests__/accessibility/Header.a11y.test.tsx"))
	assert.DirExists(t, filepath.Join(project, "src/__tests__/e2e"))
	assert.FileExists(t, filepath.Join(project, "jest.config.js"))
	assert.FileExists(t, filepath.Join(project, "src/setupTests.ts"))
	assert.Contains(t, res.Files, "src/__tests__/unit/Header.test.tsx")

	var summary TestingSummary
	data, err := os.ReadFile(filepath.Join(opts.OutputDir, "testing_summary.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, []string{"unit", "integration", "accessibility"}, summary.Categories)
	assert.Equal(t, []string{"integration"}, summary.FailedCategories)
	assert.Len(t, summary.SavedFiles, 2)

	assert.FileExists(t, filepath.Join(opts.OutputDir, "testing_unit_response.md"))
	assert.NoFileExists(t, filepath.Join(opts.OutputDir, "testing_integration_response.md"))
	assert.Len(t, readTurns(t, filepath.Join(opts.OutputDir, trajectory.TestingFile)), 4)
	assert.Contains(t, f.stdout.String(), "❌ Failed to generate integration tests")
}

func TestTesterMissingProject(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{Content: "tests"})
	opts := TestingOptions{
		Options:     f.options("gpt-4", 0.2, 6000),
		ProjectPath: filepath.Join(f.dir, "nowhere"),
		TestTypes:   []string{"unit"},
		Framework:   "vitest",
	}

	_, err := NewTester(f.env).Run(context.Background(), opts)
	assert.ErrorIs(t, err, core.ErrProjectNotFound)
	assert.Empty(t, f.client.Calls)
}

func TestReviewSystemPromptFocus(t *testing.T) {
	system, err := SystemPrompt([]string{"performance", "security", "style"})
	require.NoError(t, err)

	assert.Contains(t, system, "- **Performance**: Bundle size")
	assert.Contains(t, system, "- **Security**: XSS prevention")
	assert.NotContains(t, system, "**Accessibility**")
	assert.NotContains(t, system, "**Maintainability**")
	assert.NotContains(t, system, "**Testing**")
	assert.Equal(t, 2, strings.Count(system, "\n- **"))
}

func TestReviewUserPromptPreview(t *testing.T) {
	user, err := UserPrompt([]SourceFile{
		{Path: "src/App.tsx", Content: "héllo wörld"},
		{Path: "src/a.ts", Content: "a\nb"},
	}, 5)
	require.NoError(t, err)

	assert.Contains(t, user, "### src/App.tsx (1 lines)\n```typescript\nhéllo...\n```")
	assert.Contains(t, user, "### src/a.ts (2 lines)\n```typescript\na\nb\n```")
}

func reviewOptions(f *fixture, project string) ReviewOptions {
	return ReviewOptions{
		ProjectPath:  project,
		OutputDir:    filepath.Join(f.dir, "out"),
		Focus:        []string{"performance", "security"},
		OutputFormat: FormatJSON,
		PreviewChars: 1000,
		ModelOptions: phase.ModelOptions{Model: "gpt-4", Temperature: 0.1, MaxTokens: 6000},
	}
}

func TestReviewerRunJSON(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{
		Content: "Use <Suspense> & lazy()",
		Usage:   ledger.Usage{PromptTokens: 1000, CompletionTokens: 1000},
	})
	project := filepath.Join(f.dir, "shop_frontend")
	newProject(t, project, map[string]string{
		"src/App.tsx":          "export default App;",
		"src/utils/format.js":  "module.exports = {};",
		"src/styles/index.css": "body {}",
		"public/index.html":    "<html></html>",
	})

	opts := reviewOptions(f, project)
	opts.OutputFile = filepath.Join(f.dir, "review.json")

	r := NewReviewer(f.env)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	res, err := r.Run(context.Background(), opts)
	require.NoError(t, err)

	user := f.client.Calls[0].UserPrompt
	assert.Contains(t, user, "### src/App.tsx")
	assert.Contains(t, user, "### src/utils/format.js")
	assert.NotContains(t, user, "index.css")
	assert.NotContains(t, user, "index.html")

	var envelope map[string]any
	data, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "2026-03-01T12:00:00Z", envelope["timestamp"])
	assert.Equal(t, "run-1", envelope["run_id"])
	assert.Equal(t, "Code review completed", envelope["summary"])
	assert.Equal(t, []any{}, envelope["findings"])
	assert.Equal(t, []any{}, envelope["recommendations"])
	assert.Equal(t, "Use <Suspense> & lazy()", envelope["raw_content"])
	assert.Contains(t, string(data), "<Suspense>")

	assert.InDelta(t, 0.09, res.Ledger.TotalCost, 1e-9)
	assert.Contains(t, f.stdout.String(), "✅ Review saved to:")
}

func TestReviewerRunMarkdownToStdout(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{Content: "Looks fine."})
	project := filepath.Join(f.dir, "shop_frontend")
	newProject(t, project, map[string]string{"src/App.tsx": "export default App;"})

	opts := reviewOptions(f, project)
	opts.OutputFormat = FormatMarkdown

	_, err := NewReviewer(f.env).Run(context.Background(), opts)
	require.NoError(t, err)

	out := f.stdout.String()
	assert.Contains(t, out, "📋 CODE REVIEW RESULTS")
	assert.Contains(t, out, "# 🔍 AI Code Review Report")
	assert.Contains(t, out, "**Review Focus:** Performance, Security\n\n---\n\nLooks fine.")
}

func TestReviewerNoSourceFiles(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{Content: "review"})
	project := filepath.Join(f.dir, "empty")
	require.NoError(t, os.MkdirAll(project, 0755))

	_, err := NewReviewer(f.env).Run(context.Background(), reviewOptions(f, project))
	assert.ErrorIs(t, err, core.ErrNoSourceFiles)
	assert.Empty(t, f.client.Calls)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"performance", "security"}, SplitList(" performance, ,security,"))
	assert.Nil(t, SplitList(""))
}

func TestReviewerMissingProject(t *testing.T) {
	f := newFixture(t, "gpt-4", agent.MockResponse{Content: "review"})

	_, err := NewReviewer(f.env).Run(context.Background(), reviewOptions(f, filepath.Join(f.dir, "nowhere")))
	assert.ErrorIs(t, err, core.ErrProjectNotFound)
	assert.Empty(t, f.client.Calls)
}
