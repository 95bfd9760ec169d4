package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/trajectory"
)

// PlanningConfigFile is an optional YAML document in the output directory
// whose content is passed to the analysis prompt.
const PlanningConfigFile = "planning_config.yaml"

// Analyzer expands the plan into component-level technical specifications.
type Analyzer struct {
	phase.BasePhase
	env      phase.Env
	recorder *phase.Recorder
}

func NewAnalyzer(env phase.Env) *Analyzer {
	return &Analyzer{
		BasePhase: phase.NewBasePhase("analysis", env),
		env:       env,
		recorder:  phase.NewRecorder(env.Stdout),
	}
}

// Run reads planning_trajectories.json and writes analysis_response.md and
// analysis_trajectories.json (the planning turns followed by this stage's).
func (a *Analyzer) Run(ctx context.Context, opts phase.Options) (*phase.Result, error) {
	start := time.Now()
	in, err := loadInputs(ctx, a.BasePhase, opts, opts)
	if err != nil {
		return nil, err
	}
	a.LogStart("project", opts.ProjectName, "model", opts.Model)

	planningPath := filepath.Join(opts.OutputDir, trajectory.PlanningFile)
	prior, err := trajectory.ExtractPriorOutputs(planningPath)
	if err != nil {
		return nil, a.CreatePhaseError("load_inputs", err)
	}

	system, user, err := renderPair("analysis",
		struct{ Format string }{opts.RequirementsFormat},
		struct{ ProjectName, Requirements, Planning, PlanningConfig string }{
			ProjectName:    opts.ProjectName,
			Requirements:   in.doc.String(),
			Planning:       lastOr(prior, "No planning context available"),
			PlanningConfig: a.planningConfig(opts.OutputDir),
		},
	)
	if err != nil {
		return nil, a.CreatePhaseError("build_prompt", err)
	}

	out := a.env.Stdout
	printBanner(out, fmt.Sprintf("🔍 Analyzing technical specifications for: %s", opts.ProjectName))

	response, err := a.Invoke(ctx, a.env, &in.ledger, system, user, opts.Params())
	if err != nil {
		a.LogError(err, time.Since(start))
		return nil, a.CreatePhaseError("invoke_model", err)
	}
	res := &phase.Result{Response: response, Ledger: in.ledger}

	if err := a.recorder.Record(response, filepath.Join(opts.OutputDir, "analysis_response.md")); err != nil {
		return res, a.CreatePhaseError("record_response", err)
	}

	if _, err := trajectory.AppendAndSave(planningPath, trajectory.Pair(user, response),
		filepath.Join(opts.OutputDir, trajectory.AnalysisFile)); err != nil {
		return res, a.CreatePhaseError("persist_state", err)
	}
	res.Files = []string{"analysis_response.md", trajectory.AnalysisFile}

	fmt.Fprintf(out, "\n✅ Technical analysis completed successfully!\n")
	fmt.Fprintf(out, "📁 Output saved to: %s\n", opts.OutputDir)
	printTotal(out, "Total accumulated cost", res.Ledger, a.env.Client.Priced())

	a.LogComplete(time.Since(start), "prior_outputs", len(prior))
	return res, nil
}

// planningConfig returns the raw planning config, or "" when the file is
// absent or not valid YAML.
func (a *Analyzer) planningConfig(outputDir string) string {
	path := filepath.Join(outputDir, PlanningConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	if err != nil {
		a.Logger().Warn("could not read planning config", "path", path, "error", err)
		return ""
	}

	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		a.Logger().Warn("ignoring malformed planning config", "path", path, "error", err)
		return ""
	}
	return string(data)
}
