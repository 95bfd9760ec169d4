// Package ledger keeps the running cost and token totals shared by every
// stage of a generation run.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// FileName is the ledger file kept in each output directory.
const FileName = "accumulated_cost.json"

// Ledger is the persisted running total for one output directory.
type Ledger struct {
	TotalCost   float64 `json:"total_cost"`
	TotalTokens int     `json:"total_tokens"`
}

// Usage is the token accounting reported by a priced model call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Total returns TotalTokens, or the sum of the parts when the backend left it unset.
func (u Usage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// Rate prices one model family per 1000 tokens.
type Rate struct {
	Family      string  // matched as a case-insensitive substring of the model name
	InputPer1K  float64 // prompt tokens
	OutputPer1K float64 // completion tokens
}

// RateTable resolves a model name to a Rate. Entries are checked in order;
// models matching no entry are billed DefaultPer1K on their total tokens.
type RateTable struct {
	Rates        []Rate
	DefaultPer1K float64
}

// DefaultRates is the pricing used by the hosted backend.
var DefaultRates = RateTable{
	Rates: []Rate{
		{Family: "gpt-4", InputPer1K: 0.03, OutputPer1K: 0.06},
		{Family: "gpt-3.5", InputPer1K: 0.001, OutputPer1K: 0.002},
	},
	DefaultPer1K: 0.001,
}

// Lookup returns the rate for model and whether a family matched.
func (t RateTable) Lookup(model string) (Rate, bool) {
	lower := strings.ToLower(model)
	for _, r := range t.Rates {
		if strings.Contains(lower, strings.ToLower(r.Family)) {
			return r, true
		}
	}
	return Rate{}, false
}

// Cost prices a single call.
func (t RateTable) Cost(usage Usage, model string) float64 {
	if r, ok := t.Lookup(model); ok {
		return (float64(usage.PromptTokens)*r.InputPer1K + float64(usage.CompletionTokens)*r.OutputPer1K) / 1000
	}
	return float64(usage.Total()) * t.DefaultPer1K / 1000
}

// Accumulate adds the cost and tokens of one call to the ledger and returns
// the incremental cost.
func (l *Ledger) Accumulate(rates RateTable, usage Usage, model string) float64 {
	cost := rates.Cost(usage, model)
	l.TotalCost += cost
	l.TotalTokens += usage.Total()
	return cost
}

// Load reads the ledger at path. A missing file yields a zero ledger.
func Load(path string) (Ledger, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Ledger{}, nil
	}
	if err != nil {
		return Ledger{}, fmt.Errorf("reading ledger: %w", err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return Ledger{}, fmt.Errorf("parsing ledger %s: %w", path, err)
	}
	return l, nil
}

// Save overwrites path with the ledger. The parent directory must exist.
func Save(path string, l Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// PrintUsage writes the per-call token report shown after each priced call.
func PrintUsage(w io.Writer, usage Usage, model string, cost float64) {
	fmt.Fprintf(w, "\n--- Token Usage for %s ---\n", model)
	fmt.Fprintf(w, "Prompt tokens: %d\n", usage.PromptTokens)
	fmt.Fprintf(w, "Completion tokens: %d\n", usage.CompletionTokens)
	fmt.Fprintf(w, "Total tokens: %d\n", usage.Total())
	fmt.Fprintf(w, "Estimated cost: $%.4f\n", cost)
}
