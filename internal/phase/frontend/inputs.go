package frontend

import (
	"context"
	"fmt"
	"os"

	"github.com/dotcommander/frontgen/internal/ledger"
	"github.com/dotcommander/frontgen/internal/phase"
	"github.com/dotcommander/frontgen/internal/requirements"
)

// inputs is the state loaded at LOAD_INPUTS by the requirement-driven stages.
type inputs struct {
	doc    requirements.Document
	ledger ledger.Ledger
}

// loadInputs validates opts, ensures the output directory and reads the
// requirements document and the cost ledger. opts must embed phase.Options.
func loadInputs(ctx context.Context, base phase.BasePhase, opts any, common phase.Options) (*inputs, error) {
	if err := base.ValidateContext(ctx); err != nil {
		return nil, err
	}
	if err := phase.Validate(opts); err != nil {
		return nil, base.CreatePhaseError("load_inputs", err)
	}

	doc, err := phase.LoadRequirements(common)
	if err != nil {
		return nil, base.CreatePhaseError("load_inputs", err)
	}

	if err := os.MkdirAll(common.OutputDir, 0755); err != nil {
		return nil, base.CreatePhaseError("load_inputs", fmt.Errorf("creating output directory: %w", err))
	}

	l, err := ledger.Load(phase.LedgerPath(common.OutputDir))
	if err != nil {
		return nil, base.CreatePhaseError("load_inputs", err)
	}

	base.Logger().Debug("inputs loaded",
		"requirements", doc.Path,
		"format", doc.Format,
		"requirements_length", len(doc.Content),
		"total_cost", l.TotalCost)

	return &inputs{doc: doc, ledger: l}, nil
}
