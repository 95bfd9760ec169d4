package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTableCost(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage Usage
		want  float64
	}{
		{"gpt-4 family", "gpt-4", Usage{PromptTokens: 1000, CompletionTokens: 1000, TotalTokens: 2000}, 0.09},
		{"gpt-4 case insensitive", "GPT-4-Turbo", Usage{PromptTokens: 1000, CompletionTokens: 0, TotalTokens: 1000}, 0.03},
		{"gpt-3.5 family", "gpt-3.5-turbo", Usage{PromptTokens: 2000, CompletionTokens: 1000, TotalTokens: 3000}, 0.004},
		{"default rate", "o3-mini", Usage{PromptTokens: 500, CompletionTokens: 500, TotalTokens: 1000}, 0.001},
		{"default rate without total", "claude-3-5-sonnet", Usage{PromptTokens: 1500, CompletionTokens: 500}, 0.002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DefaultRates.Cost(tt.usage, tt.model), 1e-12)
		})
	}
}

func TestAccumulateIsAssociative(t *testing.T) {
	for _, model := range []string{"gpt-4o", "gpt-3.5-turbo", "o3-mini"} {
		t.Run(model, func(t *testing.T) {
			a := Usage{PromptTokens: 1234, CompletionTokens: 567, TotalTokens: 1801}
			b := Usage{PromptTokens: 89, CompletionTokens: 4321, TotalTokens: 4410}

			var stepwise Ledger
			stepwise.Accumulate(DefaultRates, a, model)
			stepwise.Accumulate(DefaultRates, b, model)

			var once Ledger
			once.Accumulate(DefaultRates, Usage{
				PromptTokens:     a.PromptTokens + b.PromptTokens,
				CompletionTokens: a.CompletionTokens + b.CompletionTokens,
				TotalTokens:      a.TotalTokens + b.TotalTokens,
			}, model)

			assert.InDelta(t, once.TotalCost, stepwise.TotalCost, 1e-12)
			assert.Equal(t, once.TotalTokens, stepwise.TotalTokens)
		})
	}
}

func TestAccumulateIsMonotonic(t *testing.T) {
	l := Ledger{TotalCost: 1.5, TotalTokens: 100}
	cost := l.Accumulate(DefaultRates, Usage{}, "gpt-4")

	assert.Zero(t, cost)
	assert.Equal(t, 1.5, l.TotalCost)
	assert.Equal(t, 100, l.TotalTokens)
}

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Ledger{}, l)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	want := Ledger{TotalCost: 0.123456, TotalTokens: 98765}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveDoesNotCreateDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", FileName)
	assert.Error(t, Save(path, Ledger{}))
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf, Usage{PromptTokens: 10, CompletionTokens: 5}, "gpt-4", 0.0006)

	out := buf.String()
	assert.Contains(t, out, "Token Usage for gpt-4")
	assert.Contains(t, out, "Total tokens: 15")
	assert.Contains(t, out, "Estimated cost: $0.0006")
}
