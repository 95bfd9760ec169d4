package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dotcommander/frontgen/internal/extract"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/scaffold"
	"github.com/dotcommander/frontgen/internal/storage"
	"github.com/dotcommander/frontgen/internal/trajectory"
)

// ComponentSpec describes one generated source file.
type ComponentSpec struct {
	Name        string
	Kind        string
	Path        string
	Description string
}

// Components are generated in this order, one model call each.
var Components = []ComponentSpec{
	{Name: "App", Kind: "main", Path: "src/App.tsx", Description: "Main application component with routing"},
	{Name: "Layout", Kind: "layout", Path: "src/components/Layout.tsx", Description: "Main layout component with header, sidebar, footer"},
	{Name: "Header", Kind: "component", Path: "src/components/Header.tsx", Description: "Application header with navigation"},
	{Name: "Sidebar", Kind: "component", Path: "src/components/Sidebar.tsx", Description: "Navigation sidebar component"},
	{Name: "Dashboard", Kind: "page", Path: "src/pages/Dashboard.tsx", Description: "Main dashboard page"},
}

// CodingOptions adds the generated project location to the common options.
type CodingOptions struct {
	phase.Options
	OutputRepoDir string `flag:"output_repo_dir" validate:"required"`
}

// GenerationSummary is written to generation_summary.json.
type GenerationSummary struct {
	ProjectName         string   `json:"project_name"`
	GeneratedComponents int      `json:"generated_components"`
	Components          []string `json:"components"`
	ProjectPath         string   `json:"project_path"`
	TotalCost           float64  `json:"total_cost"`
	TotalTokens         int      `json:"total_tokens"`
	RunID               string   `json:"run_id"`
}

// Implementer generates the component sources and scaffolds the project
// around them.
type Implementer struct {
	phase.BasePhase
	env      phase.Env
	recorder *phase.Recorder
}

func NewImplementer(env phase.Env) *Implementer {
	return &Implementer{
		BasePhase: phase.NewBasePhase("coding", env),
		env:       env,
		recorder:  phase.NewRecorder(env.Stdout),
	}
}

// Run generates every component in Components. A failed component is
// reported and skipped; the remaining components, package.json and the
// boilerplate are still written.
func (m *Implementer) Run(ctx context.Context, opts CodingOptions) (*phase.Result, error) {
	start := time.Now()
	in, err := loadInputs(ctx, m.BasePhase, opts, opts.Options)
	if err != nil {
		return nil, err
	}
	m.LogStart("project", opts.ProjectName, "model", opts.Model, "components", len(Components))

	analysisPath := filepath.Join(opts.OutputDir, trajectory.AnalysisFile)
	prior, err := trajectory.ExtractPriorOutputs(analysisPath)
	if err != nil {
		return nil, m.CreatePhaseError("load_inputs", err)
	}
	analysis := lastOr(prior, "No analysis context available")

	projectPath, err := scaffold.CreateSkeleton(ctx, opts.OutputRepoDir, opts.ProjectName)
	if err != nil {
		return nil, m.CreatePhaseError("load_inputs", err)
	}
	project := storage.NewFileSystem(projectPath)

	out := m.env.Stdout
	printBanner(out, fmt.Sprintf("⚛️ Generating React components for: %s", opts.ProjectName))

	res := &phase.Result{Ledger: in.ledger}
	var (
		generated []scaffold.Component
		turns     []trajectory.Turn
	)
	for _, spec := range Components {
		if err := ctx.Err(); err != nil {
			return res, m.CreatePhaseError("invoke_model", err)
		}

		system, user, err := renderPair("coding", spec, struct {
			ProjectName  string
			Component    ComponentSpec
			Requirements string
			Analysis     string
		}{opts.ProjectName, spec, in.doc.String(), analysis})
		if err != nil {
			return res, m.CreatePhaseError("build_prompt", err)
		}

		response, err := m.Invoke(ctx, m.env, &res.Ledger, system, user, opts.Params())
		if err != nil {
			fmt.Fprintf(out, "❌ Error generating %s: %v\n", spec.Name, err)
			m.Logger().Warn("component generation failed", "component", spec.Name, "error", err)
			continue
		}
		turns = append(turns, trajectory.Pair(user, response)...)

		if code := extract.FirstBlock(response); code != "" {
			if err := project.Save(ctx, spec.Path, []byte(code)); err != nil {
				fmt.Fprintf(out, "❌ Error saving %s: %v\n", spec.Path, err)
				m.Logger().Warn("component save failed", "component", spec.Name, "path", spec.Path, "error", err)
			} else {
				generated = append(generated, scaffold.Component{Name: spec.Name, Path: spec.Path})
				res.Files = append(res.Files, spec.Path)
				fmt.Fprintf(out, "✅ Generated %s component\n", spec.Name)
			}
		}

		transcript := filepath.Join(opts.OutputDir, fmt.Sprintf("coding_%s_response.md", strings.ToLower(spec.Name)))
		if err := m.recorder.Record(response, transcript); err != nil {
			m.Logger().Warn("transcript not saved", "component", spec.Name, "error", err)
		}
	}

	manifest, err := scaffold.BuildManifest(opts.ProjectName, in.doc.String()).MarshalIndent()
	if err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}
	if err := project.Save(ctx, "package.json", manifest); err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}
	res.Files = append(res.Files, "package.json")
	fmt.Fprintln(out, "✅ Generated package.json")

	files, err := scaffold.Boilerplate(opts.ProjectName, generated)
	if err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}
	if err := scaffold.WriteFiles(ctx, project, files); err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}
	for _, f := range files {
		res.Files = append(res.Files, f.Path)
	}

	if _, err := trajectory.AppendAndSave(analysisPath, turns,
		filepath.Join(opts.OutputDir, trajectory.CodingFile)); err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}

	summary := GenerationSummary{
		ProjectName:         opts.ProjectName,
		GeneratedComponents: len(generated),
		Components:          make([]string, 0, len(generated)),
		ProjectPath:         projectPath,
		TotalCost:           res.Ledger.TotalCost,
		TotalTokens:         res.Ledger.TotalTokens,
		RunID:               m.env.RunID,
	}
	for _, c := range generated {
		summary.Components = append(summary.Components, c.Name)
	}
	if err := writeJSON(filepath.Join(opts.OutputDir, "generation_summary.json"), summary); err != nil {
		return res, m.CreatePhaseError("persist_state", err)
	}

	fmt.Fprintf(out, "\n🎉 React application generation completed!\n")
	fmt.Fprintf(out, "📁 Project created at: %s\n", projectPath)
	fmt.Fprintf(out, "⚛️ Generated %d components\n", len(generated))
	printTotal(out, "Total cost", res.Ledger, m.env.Client.Priced())
	fmt.Fprintf(out, "\n🚀 To run the application:\n")
	fmt.Fprintf(out, "   cd %s\n   npm install\n   npm start\n", projectPath)

	m.LogComplete(time.Since(start), "generated", len(generated), "project_path", projectPath)
	return res, nil
}

// marshalIndent indents v without escaping <, > and &.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSON(path string, v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
