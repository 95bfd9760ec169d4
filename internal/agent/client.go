package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dotcommander/frontgen/internal/core"
	"github.com/dotcommander/frontgen/internal/ledger"
)

const (
	apiTypeOpenAI    = "openai"
	apiTypeAnthropic = "anthropic"
)

// Client talks to a hosted chat-completion API. Requests are rate limited and
// never retried.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	apiType    string // "anthropic" or "openai"
	logger     *slog.Logger
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		// Preserve existing transport if any
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

func WithAPIConfig(baseURL, model string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
		c.model = model
		// Detect API type based on base URL
		if strings.Contains(baseURL, "anthropic") {
			c.apiType = apiTypeAnthropic
		} else {
			c.apiType = apiTypeOpenAI
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "ai_client")
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	// Configure transport with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-4",
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(0.5), 15), // 30 req/min
		apiType: apiTypeOpenAI,
		logger:  slog.Default().With("component", "ai_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("AI client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

func (c *Client) Model() string { return c.model }

func (c *Client) Priced() bool { return true }

// CompleteWithSystem makes a single request with separate system and user prompts.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, params Params) (*Completion, error) {
	requestID := fmt.Sprintf("api_%d", time.Now().UnixNano())
	startTime := time.Now()

	c.logger.Debug("waiting for rate limit",
		"request_id", requestID)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiting: %w", err)
	}

	c.logger.Debug("rate limit passed for AI request",
		"request_id", requestID,
		"wait_duration_ms", time.Since(startTime).Milliseconds(),
		"limit_per_second", c.limiter.Limit(),
		"burst_capacity", c.limiter.Burst())

	c.logger.Debug("sending AI generation request",
		"request_id", requestID,
		"system_prompt_length", len(systemPrompt),
		"user_prompt_length", len(userPrompt),
		"temperature", params.Temperature,
		"max_tokens", params.MaxTokens,
		"api_type", c.apiType,
		"model", c.model)

	var (
		completion *Completion
		err        error
	)
	if c.apiType == apiTypeAnthropic {
		completion, err = c.doAnthropicRequest(ctx, requestID, systemPrompt, userPrompt, params)
	} else {
		completion, err = c.doOpenAIRequest(ctx, requestID, systemPrompt, userPrompt, params)
	}
	if err != nil {
		c.logger.Error("AI generation request failed",
			"request_id", requestID,
			"duration_ms", time.Since(startTime).Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	c.logger.Info("API request successful",
		"request_id", requestID,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(completion.Content),
		"total_tokens", completion.Usage.Total())

	return completion, nil
}

// post sends body to endpoint and returns the response body of a 200 reply.
func (c *Client) post(ctx context.Context, requestID, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("HTTP response received",
		"request_id", requestID,
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(httpStart).Milliseconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("API error",
			"request_id", requestID,
			"status_code", resp.StatusCode,
			"response", string(respBody))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) doOpenAIRequest(ctx context.Context, requestID, systemPrompt, userPrompt string, params Params) (*Completion, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": params.Temperature,
		"max_tokens":  params.MaxTokens,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := c.post(ctx, requestID, "/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	var response struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", core.ErrEmptyResponse)
	}

	c.logger.Info("OpenAI request completed",
		"request_id", requestID,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return &Completion{
		Content: response.Choices[0].Message.Content,
		Model:   c.model,
		Usage: ledger.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
	}, nil
}

func (c *Client) doAnthropicRequest(ctx context.Context, requestID, systemPrompt, userPrompt string, params Params) (*Completion, error) {
	// Anthropic uses system parameter separate from messages
	requestBody := map[string]interface{}{
		"model":  c.model,
		"system": systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
		"temperature": params.Temperature,
		"max_tokens":  params.MaxTokens,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := c.post(ctx, requestID, "/messages", body, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return nil, err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(response.Content) == 0 {
		return nil, fmt.Errorf("no content in response: %w", core.ErrEmptyResponse)
	}

	c.logger.Info("Anthropic request completed",
		"request_id", requestID,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens)

	return &Completion{
		Content: response.Content[0].Text,
		Model:   c.model,
		Usage: ledger.Usage{
			PromptTokens:     response.Usage.InputTokens,
			CompletionTokens: response.Usage.OutputTokens,
		},
	}, nil
}
