package agent

import (
	"bytes"
	"fmt"
	"io/fs"
	"sync"
	"text/template"
)

// PromptCache parses prompt templates from a filesystem once and renders
// them on demand.
type PromptCache struct {
	mu        sync.RWMutex
	fsys      fs.FS
	templates map[string]*template.Template
}

// NewPromptCache creates a cache reading templates from fsys.
func NewPromptCache(fsys fs.FS) *PromptCache {
	return &PromptCache{
		fsys:      fsys,
		templates: make(map[string]*template.Template),
	}
}

// LoadTemplate loads and parses a template from the filesystem or cache
func (pc *PromptCache) LoadTemplate(name string) (*template.Template, error) {
	pc.mu.RLock()
	if tmpl, ok := pc.templates[name]; ok {
		pc.mu.RUnlock()
		return tmpl, nil
	}
	pc.mu.RUnlock()

	content, err := fs.ReadFile(pc.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading prompt %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt %s: %w", name, err)
	}

	pc.mu.Lock()
	pc.templates[name] = tmpl
	pc.mu.Unlock()

	return tmpl, nil
}

// Render executes the named template with data.
func (pc *PromptCache) Render(name string, data any) (string, error) {
	tmpl, err := pc.LoadTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Stats returns the number of parsed templates held.
func (pc *PromptCache) Stats() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.templates)
}
