package frontend

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/trajectory"
)

// Planner turns the requirements into a frontend development plan.
type Planner struct {
	phase.BasePhase
	env      phase.Env
	recorder *phase.Recorder
}

func NewPlanner(env phase.Env) *Planner {
	return &Planner{
		BasePhase: phase.NewBasePhase("planning", env),
		env:       env,
		recorder:  phase.NewRecorder(env.Stdout),
	}
}

// Run writes planning_response.md and planning_trajectories.json to the
// output directory.
func (p *Planner) Run(ctx context.Context, opts phase.Options) (*phase.Result, error) {
	start := time.Now()
	in, err := loadInputs(ctx, p.BasePhase, opts, opts)
	if err != nil {
		return nil, err
	}
	p.LogStart("project", opts.ProjectName, "model", opts.Model)

	system, user, err := renderPair("planning",
		struct{ Format string }{opts.RequirementsFormat},
		struct{ ProjectName, Requirements string }{opts.ProjectName, in.doc.String()},
	)
	if err != nil {
		return nil, p.CreatePhaseError("build_prompt", err)
	}

	out := p.env.Stdout
	printBanner(out, fmt.Sprintf("🎯 Planning frontend architecture for: %s", opts.ProjectName))

	response, err := p.Invoke(ctx, p.env, &in.ledger, system, user, opts.Params())
	if err != nil {
		p.LogError(err, time.Since(start))
		return nil, p.CreatePhaseError("invoke_model", err)
	}
	res := &phase.Result{Response: response, Ledger: in.ledger}

	if err := p.recorder.Record(response, filepath.Join(opts.OutputDir, "planning_response.md")); err != nil {
		return res, p.CreatePhaseError("record_response", err)
	}

	if _, err := trajectory.AppendAndSave("", trajectory.Pair(user, response),
		filepath.Join(opts.OutputDir, trajectory.PlanningFile)); err != nil {
		return res, p.CreatePhaseError("persist_state", err)
	}
	res.Files = []string{"planning_response.md", trajectory.PlanningFile}

	fmt.Fprintf(out, "\n✅ Planning completed successfully!\n")
	fmt.Fprintf(out, "📁 Output saved to: %s\n", opts.OutputDir)
	printTotal(out, "Total accumulated cost", res.Ledger, p.env.Client.Priced())

	p.LogComplete(time.Since(start), "response_length", len(response))
	return res, nil
}
