package frontend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/storage"
)

// Review output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// SourcePattern selects the files a review reads.
const SourcePattern = "src/**/*.{ts,tsx,js,jsx}"

type focusArea struct {
	name   string
	title  string
	clause string
}

var focusAreas = []focusArea{
	{"performance", "Performance", "**Performance**: Bundle size, rendering efficiency, memory usage, lazy loading"},
	{"accessibility", "Accessibility", "**Accessibility**: WCAG compliance, ARIA labels, keyboard navigation, screen readers"},
	{"security", "Security", "**Security**: XSS prevention, data validation, secure API calls, dependency vulnerabilities"},
	{"maintainability", "Maintainability", "**Maintainability**: Code organization, naming conventions, documentation, reusability"},
	{"testing", "Testing", "**Testing**: Test coverage, testability, mocking strategies, edge cases"},
}

// recognized returns the known focus areas named in focus, in the order given.
// Unknown names are skipped.
func recognized(focus []string) []focusArea {
	var areas []focusArea
	for _, name := range focus {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, a := range focusAreas {
			if a.name == name {
				areas = append(areas, a)
				break
			}
		}
	}
	return areas
}

// SourceFile is one file embedded in the review prompt.
type SourceFile struct {
	Path    string
	Content string
}

// SystemPrompt builds the reviewer instruction with one clause per
// recognized focus area.
func SystemPrompt(focus []string) (string, error) {
	var clauses []string
	for _, a := range recognized(focus) {
		clauses = append(clauses, a.clause)
	}
	return renderPrompt("review_system", struct{ Clauses []string }{clauses})
}

// UserPrompt embeds every file, each preview cut to previewChars characters.
func UserPrompt(files []SourceFile, previewChars int) (string, error) {
	type entry struct {
		Path    string
		Lines   int
		Preview string
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		preview := f.Content
		if runes := []rune(preview); len(runes) > previewChars {
			preview = string(runes[:previewChars]) + "..."
		}
		entries = append(entries, entry{
			Path:    f.Path,
			Lines:   strings.Count(f.Content, "\n") + 1,
			Preview: preview,
		})
	}
	return renderPrompt("review_user", struct{ Files []entry }{entries})
}

// ReviewOptions configure the review stage.
type ReviewOptions struct {
	ProjectPath  string   `flag:"project_path" validate:"required"`
	OutputDir    string   `flag:"output_dir" validate:"required"`
	Focus        []string `flag:"review_focus"`
	OutputFormat string   `flag:"output_format" validate:"required,oneof=markdown json"`
	OutputFile   string   `flag:"output_file"`
	PreviewChars int      `flag:"review_preview_chars" validate:"gte=1"`
	phase.ModelOptions
}

type reviewEnvelope struct {
	Timestamp       string   `json:"timestamp"`
	RunID           string   `json:"run_id"`
	Summary         string   `json:"summary"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	RawContent      string   `json:"raw_content"`
}

// Reviewer asks the model for a single review of a generated project.
type Reviewer struct {
	phase.BasePhase
	env phase.Env
	now func() time.Time
}

func NewReviewer(env phase.Env) *Reviewer {
	return &Reviewer{
		BasePhase: phase.NewBasePhase("review", env),
		env:       env,
		now:       time.Now,
	}
}

// FormatReview renders content under a markdown header or inside the JSON
// envelope. The envelope's structured fields are always empty.
func (r *Reviewer) FormatReview(content, format string, focus []string) (string, error) {
	ts := r.now()
	if format == FormatJSON {
		data, err := marshalIndent(reviewEnvelope{
			Timestamp:       ts.UTC().Format(time.RFC3339),
			RunID:           r.env.RunID,
			Summary:         "Code review completed",
			Findings:        []string{},
			Recommendations: []string{},
			RawContent:      content,
		})
		if err != nil {
			return "", fmt.Errorf("marshaling review: %w", err)
		}
		return string(data), nil
	}

	var titles []string
	for _, a := range recognized(focus) {
		titles = append(titles, a.title)
	}
	if len(titles) == 0 {
		titles = []string{"General"}
	}

	var b strings.Builder
	b.WriteString("# 🔍 AI Code Review Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", ts.Format(time.RFC1123))
	fmt.Fprintf(&b, "**Review Focus:** %s\n\n", strings.Join(titles, ", "))
	b.WriteString("---\n\n")
	b.WriteString(content)
	return b.String(), nil
}

// Run reads the project sources, makes one model call and writes the
// formatted review to opts.OutputFile or stdout.
func (r *Reviewer) Run(ctx context.Context, opts ReviewOptions) (*phase.Result, error) {
	start := time.Now()
	if err := r.ValidateContext(ctx); err != nil {
		return nil, err
	}
	if err := phase.Validate(opts); err != nil {
		return nil, r.CreatePhaseError("load_inputs", err)
	}

	project := storage.NewFileSystem(opts.ProjectPath)
	if !project.Exists(ctx, ".") {
		return nil, r.CreatePhaseError("load_inputs", fmt.Errorf("%w: %s", core.ErrProjectNotFound, project.Root()))
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, r.CreatePhaseError("load_inputs", fmt.Errorf("creating output directory: %w", err))
	}
	l, err := ledger.Load(phase.LedgerPath(opts.OutputDir))
	if err != nil {
		return nil, r.CreatePhaseError("load_inputs", err)
	}

	out := r.env.Stdout
	fmt.Fprintln(out, "🔍 AI Code Review")
	fmt.Fprintln(out, "=====================================")
	fmt.Fprintf(out, "📁 Project: %s\n", opts.ProjectPath)
	fmt.Fprintf(out, "🤖 Model: %s\n", r.env.Client.Model())
	fmt.Fprintf(out, "🎯 Focus: %s\n", strings.Join(opts.Focus, ","))
	fmt.Fprintf(out, "📄 Format: %s\n", opts.OutputFormat)
	fmt.Fprintln(out, "=====================================")

	fmt.Fprintln(out, "\n📊 Analyzing code files...")
	files, err := r.readSources(ctx, project)
	if err != nil {
		return nil, r.CreatePhaseError("load_inputs", err)
	}
	fmt.Fprintf(out, "Found %d code files\n", len(files))
	if len(files) == 0 {
		return nil, r.CreatePhaseError("load_inputs", core.ErrNoSourceFiles)
	}
	r.LogStart("project_path", opts.ProjectPath, "model", opts.Model, "files", len(files), "focus", opts.Focus)

	system, err := SystemPrompt(opts.Focus)
	if err != nil {
		return nil, r.CreatePhaseError("build_prompt", err)
	}
	user, err := UserPrompt(files, opts.PreviewChars)
	if err != nil {
		return nil, r.CreatePhaseError("build_prompt", err)
	}

	fmt.Fprintln(out, "🚀 Conducting AI code review...")
	res := &phase.Result{Ledger: l}
	response, err := r.Invoke(ctx, r.env, &res.Ledger, system, user, opts.Params())
	if err != nil {
		fmt.Fprintln(out, "❌ Code review failed")
		r.LogError(err, time.Since(start))
		return res, r.CreatePhaseError("invoke_model", err)
	}
	res.Response = response

	formatted, err := r.FormatReview(response, opts.OutputFormat, opts.Focus)
	if err != nil {
		return res, r.CreatePhaseError("persist_state", err)
	}

	if opts.OutputFile != "" {
		if err := os.WriteFile(opts.OutputFile, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(out, "❌ Failed to save review: %v\n", err)
			return res, r.CreatePhaseError("persist_state", fmt.Errorf("writing review: %w", err))
		}
		res.Files = append(res.Files, opts.OutputFile)
		fmt.Fprintf(out, "✅ Review saved to: %s\n", opts.OutputFile)
	} else {
		fmt.Fprintln(out, "\n"+strings.Repeat("=", 50))
		fmt.Fprintln(out, "📋 CODE REVIEW RESULTS")
		fmt.Fprintln(out, strings.Repeat("=", 50))
		fmt.Fprintln(out, formatted)
	}

	fmt.Fprintln(out, "\n🎉 Code Review Completed!")
	printTotal(out, "Total accumulated cost", res.Ledger, r.env.Client.Priced())

	r.LogComplete(time.Since(start), "output_file", opts.OutputFile, "format", opts.OutputFormat)
	return res, nil
}

// readSources loads every file matching SourcePattern. Unreadable files are
// skipped with a warning line.
func (r *Reviewer) readSources(ctx context.Context, project *storage.FileSystem) ([]SourceFile, error) {
	paths, err := project.List(ctx, SourcePattern)
	if err != nil {
		return nil, err
	}

	files := make([]SourceFile, 0, len(paths))
	for _, p := range paths {
		data, err := project.Load(ctx, p)
		if err != nil {
			fmt.Fprintf(r.env.Stdout, "⚠️ Could not read %s: %v\n", p, err)
			continue
		}
		files = append(files, SourceFile{Path: filepath.ToSlash(p), Content: string(data)})
	}
	return files, nil
}
