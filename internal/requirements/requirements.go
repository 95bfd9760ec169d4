// Package requirements loads the project requirements document fed to every stage.
package requirements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dotcommander/frontgen/internal/core"
)

// Format names how a requirements file is written.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
)

// Formats lists the accepted formats in flag order.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatText}

// ParseFormat validates a --requirements_format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q: select 'markdown', 'json', or 'text'", core.ErrUnsupportedFormat, s)
}

// Document is the requirements as embedded in prompts.
type Document struct {
	Path    string
	Format  Format
	Content string
}

// String returns the prompt text.
func (d Document) String() string {
	return d.Content
}

// Load reads path in the given format. JSON documents must parse; they are
// re-indented with key order and text left as written.
func Load(path string, format Format) (Document, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading requirements: %w", err)
	}

	content := string(data)
	if format == FormatJSON {
		var raw json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return Document{}, fmt.Errorf("parsing requirements %s: %w", path, err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
			return Document{}, fmt.Errorf("rendering requirements: %w", err)
		}
		content = pretty.String()
	}

	return Document{Path: path, Format: format, Content: content}, nil
}
