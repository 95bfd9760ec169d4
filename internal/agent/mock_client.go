package agent

import (
	"context"
	"fmt"

	"github.com/dotcommander/frontgen/internal/ledger"
)

// MockCall records one request made to a MockClient.
type MockCall struct {
	SystemPrompt string
	UserPrompt   string
	Params       Params
}

// MockResponse is one scripted reply. A non-nil Err fails the call.
type MockResponse struct {
	Content string
	Usage   ledger.Usage
	Err     error
}

// MockClient provides fake AI responses for testing. Responses are returned
// in order; once exhausted the last one repeats.
type MockClient struct {
	model     string
	priced    bool
	responses []MockResponse
	Calls     []MockCall
}

// NewMockClient creates a priced mock AI client for testing
func NewMockClient(model string, responses ...MockResponse) *MockClient {
	return &MockClient{
		model:     model,
		priced:    true,
		responses: responses,
	}
}

// Unpriced makes the mock behave like the local backend.
func (m *MockClient) Unpriced() *MockClient {
	m.priced = false
	return m
}

func (m *MockClient) Model() string { return m.model }

func (m *MockClient) Priced() bool { return m.priced }

// CompleteWithSystem returns the next scripted response
func (m *MockClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string, params Params) (*Completion, error) {
	m.Calls = append(m.Calls, MockCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Params:       params,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock client has no scripted responses")
	}

	idx := len(m.Calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]
	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Completion{
		Content: resp.Content,
		Model:   m.model,
		Usage:   resp.Usage,
	}, nil
}
