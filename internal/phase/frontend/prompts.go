// Package frontend holds the five stage drivers that take a requirements
// document to a generated, tested and reviewed React project.
package frontend

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/dotcommander/frontgen/internal/agent"
	"github.com/dotcommander/frontgen/internal/ledger"
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var prompts = newPrompts()

func newPrompts() *agent.PromptCache {
	sub, err := fs.Sub(promptFiles, "prompts")
	if err != nil {
		panic(err)
	}
	return agent.NewPromptCache(sub)
}

func renderPrompt(name string, data any) (string, error) {
	out, err := prompts.Render(name+".tmpl", data)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// renderPair renders {stage}_system and {stage}_user.
func renderPair(stage string, systemData, userData any) (system, user string, err error) {
	if system, err = renderPrompt(stage+"_system", systemData); err != nil {
		return "", "", err
	}
	if user, err = renderPrompt(stage+"_user", userData); err != nil {
		return "", "", err
	}
	return system, user, nil
}

// lastOr returns the most recent prior output, or placeholder when there is none.
func lastOr(outputs []string, placeholder string) string {
	if len(outputs) == 0 {
		return placeholder
	}
	return outputs[len(outputs)-1]
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func printBanner(w io.Writer, line string) {
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func printTotal(w io.Writer, label string, l ledger.Ledger, priced bool) {
	if priced {
		fmt.Fprintf(w, "💰 %s: $%.4f\n", label, l.TotalCost)
	}
}
