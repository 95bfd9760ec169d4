package agent

import (
	"context"

	"github.com/dotcommander/frontgen/internal/ledger"
)

// Params are the per-call sampling settings.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Completion is one model response with its token usage. Usage is zero when
// the backend reports none.
type Completion struct {
	Content string
	Model   string
	Usage   ledger.Usage
}

type AIClient interface {
	// CompleteWithSystem sends one system+user exchange and returns the reply.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, params Params) (*Completion, error)
	Model() string
	// Priced reports whether completions carry billable usage.
	Priced() bool
}
