package phase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dotcommander/frontgen/internal/agent"
	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
)

// Env carries the collaborators shared by every stage invocation.
type Env struct {
	Client agent.AIClient
	Stdout io.Writer // user-facing progress
	Logger *slog.Logger
	RunID  string
	Rates  ledger.RateTable
}

// Result is what a stage hands back to its caller. Ledger carries the
// updated cost totals for the caller to persist.
type Result struct {
	Response string
	Ledger   ledger.Ledger
	Files    []string // artifacts written, relative to their root
}

// BasePhase provides common functionality for all stages
type BasePhase struct {
	name   string
	logger *slog.Logger
}

// NewBasePhase creates a base phase logging under the stage name
func NewBasePhase(name string, env Env) BasePhase {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return BasePhase{
		name:   name,
		logger: logger.With("phase", name, "run_id", env.RunID),
	}
}

// Name returns the phase name
func (b BasePhase) Name() string {
	return b.name
}

func (b BasePhase) Logger() *slog.Logger {
	return b.logger
}

// Invoke performs exactly one model call. For priced clients the usage is
// booked into l and the per-call report is written to env.Stdout.
func (b BasePhase) Invoke(ctx context.Context, env Env, l *ledger.Ledger, systemPrompt, userPrompt string, params agent.Params) (string, error) {
	start := time.Now()
	completion, err := env.Client.CompleteWithSystem(ctx, systemPrompt, userPrompt, params)
	if err != nil {
		b.logger.Error("model call failed",
			"model", env.Client.Model(),
			"duration", time.Since(start),
			"error", err)
		return "", err
	}

	if env.Client.Priced() {
		cost := l.Accumulate(env.Rates, completion.Usage, completion.Model)
		ledger.PrintUsage(env.Stdout, completion.Usage, completion.Model, cost)
		b.logger.Debug("usage booked",
			"cost", cost,
			"tokens", completion.Usage.Total(),
			"total_cost", l.TotalCost)
	}

	b.logger.Debug("model call completed",
		"model", completion.Model,
		"duration", time.Since(start),
		"response_length", len(completion.Content))

	return completion.Content, nil
}

// LogStart logs the start of phase execution
func (b BasePhase) LogStart(attrs ...any) {
	b.logger.Info("Starting phase execution", attrs...)
}

// LogComplete logs successful phase completion
func (b BasePhase) LogComplete(duration time.Duration, attrs ...any) {
	b.logger.Info("Phase completed successfully", append([]any{"duration", duration}, attrs...)...)
}

// LogError logs phase execution errors
func (b BasePhase) LogError(err error, duration time.Duration) {
	b.logger.Error("Phase execution failed",
		"error", err,
		"duration", duration,
	)
}

// CreatePhaseError creates a properly formatted phase error
func (b BasePhase) CreatePhaseError(step string, cause error) *core.PhaseError {
	return core.NewPhaseError(b.name, step, cause)
}

// ValidateContext checks if the context is valid for execution
func (b BasePhase) ValidateContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("phase %s: context already cancelled: %w", b.name, ctx.Err())
	default:
		return nil
	}
}
