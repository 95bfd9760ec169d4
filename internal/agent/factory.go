package agent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dotcommander/frontgen/internal/config"
)

// Inference backends selectable per stage invocation.
const (
	BackendOpenAI = "openai"
	BackendLocal  = "local"
)

// BackendOptions select and size the backend for one stage invocation.
type BackendOptions struct {
	Backend     string
	Model       string
	MaxModelLen int
	TPSize      int
}

// NewFromConfig builds the client for opts.Backend. The hosted backend needs
// an API key; the local backend does not.
func NewFromConfig(cfg *config.Config, opts BackendOptions, logger *slog.Logger) (AIClient, error) {
	switch opts.Backend {
	case BackendOpenAI, "":
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		return NewClient(cfg.AI.APIKey,
			WithAPIConfig(cfg.AI.BaseURL, opts.Model),
			WithTimeout(time.Duration(cfg.AI.Timeout)*time.Second),
			WithRateLimit(cfg.Limits.RateLimit.RequestsPerMinute, cfg.Limits.RateLimit.BurstSize),
			WithLogger(logger),
		), nil
	case BackendLocal:
		return NewLocalClient(cfg.Local.Host, opts.Model, LocalOptions{
			MaxModelLen: opts.MaxModelLen,
			TPSize:      opts.TPSize,
			TopP:        cfg.Local.TopP,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
