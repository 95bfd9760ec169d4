package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
)

type chatAPI interface {
	Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.ChatResponseFunc) error
}

// LocalOptions size the local inference context.
type LocalOptions struct {
	MaxModelLen int     // context window, num_ctx
	TPSize      int     // parallelism degree, num_thread
	TopP        float64 // nucleus sampling, 0.95 when zero
}

// LocalClient runs completions against a locally served Ollama model.
// Completions are unpriced.
type LocalClient struct {
	api    chatAPI
	model  string
	opts   LocalOptions
	logger *slog.Logger
}

// NewLocalClient connects to host, or to OLLAMA_HOST when host is empty.
func NewLocalClient(host, model string, opts LocalOptions, logger *slog.Logger) (*LocalClient, error) {
	var api *ollama.Client
	if host == "" {
		client, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		api = client
	} else {
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parsing ollama host %q: %w", host, err)
		}
		api = ollama.NewClient(base, http.DefaultClient)
	}
	return newLocalClient(api, model, opts, logger), nil
}

func newLocalClient(api chatAPI, model string, opts LocalOptions, logger *slog.Logger) *LocalClient {
	if opts.TopP == 0 {
		opts.TopP = 0.95
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalClient{
		api:    api,
		model:  model,
		opts:   opts,
		logger: logger.With("component", "local_client"),
	}
}

func (c *LocalClient) Model() string { return c.model }

func (c *LocalClient) Priced() bool { return false }

func (c *LocalClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, params Params) (*Completion, error) {
	stream := false
	options := map[string]interface{}{
		"temperature": params.Temperature,
		"num_predict": params.MaxTokens,
		"top_p":       c.opts.TopP,
	}
	if c.opts.MaxModelLen > 0 {
		options["num_ctx"] = c.opts.MaxModelLen
	}
	if c.opts.TPSize > 0 {
		options["num_thread"] = c.opts.TPSize
	}

	req := &ollama.ChatRequest{
		Model: c.model,
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:  &stream,
		Options: options,
	}

	c.logger.Debug("sending local chat request",
		"model", c.model,
		"system_prompt_length", len(systemPrompt),
		"user_prompt_length", len(userPrompt),
		"num_ctx", c.opts.MaxModelLen)

	startTime := time.Now()
	var content strings.Builder
	var usage ledger.Usage
	err := c.api.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			usage.PromptTokens = resp.PromptEvalCount
			usage.CompletionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		c.logger.Error("local chat request failed",
			"model", c.model,
			"error", err)
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	if content.Len() == 0 {
		return nil, fmt.Errorf("model %s: %w", c.model, core.ErrEmptyResponse)
	}

	c.logger.Info("local chat request completed",
		"model", c.model,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", content.Len(),
		"eval_count", usage.CompletionTokens)

	return &Completion{
		Content: content.String(),
		Model:   c.model,
		Usage:   usage,
	}, nil
}
