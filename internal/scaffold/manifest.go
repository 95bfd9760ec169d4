package scaffold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Manifest is the generated project's package.json.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         Scripts           `json:"scripts"`
	ESLintConfig    ESLintConfig      `json:"eslintConfig"`
	Browserslist    Browserslist      `json:"browserslist"`
}

type Scripts struct {
	Start string `json:"start"`
	Build string `json:"build"`
	Test  string `json:"test"`
	Eject string `json:"eject"`
}

type ESLintConfig struct {
	Extends []string `json:"extends"`
}

type Browserslist struct {
	Production  []string `json:"production"`
	Development []string `json:"development"`
}

// Trigger adds a dependency fragment when any keyword appears in the
// requirements (case-insensitive substring match).
type Trigger struct {
	Name         string
	Keywords     []string
	Dependencies map[string]string
}

// Matches reports whether the lowercased text contains a keyword.
func (t Trigger) Matches(lowerText string) bool {
	for _, kw := range t.Keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// CoreDependencies are present in every manifest.
func CoreDependencies() map[string]string {
	return map[string]string{
		"react":            "^18.2.0",
		"react-dom":        "^18.2.0",
		"react-scripts":    "5.0.1",
		"typescript":       "^4.9.5",
		"@types/react":     "^18.2.0",
		"@types/react-dom": "^18.2.0",
	}
}

// DevDependencies are present in every manifest.
func DevDependencies() map[string]string {
	return map[string]string{
		"@testing-library/jest-dom":   "^5.16.4",
		"@testing-library/react":      "^13.4.0",
		"@testing-library/user-event": "^13.5.0",
		"@types/jest":                 "^27.5.2",
		"@types/node":                 "^16.18.0",
	}
}

// Triggers is evaluated in order; each matching entry is merged into the
// dependency set.
var Triggers = []Trigger{
	{
		Name:     "tailwind",
		Keywords: []string{"tailwind"},
		Dependencies: map[string]string{
			"tailwindcss":  "^3.3.0",
			"autoprefixer": "^10.4.14",
			"postcss":      "^8.4.24",
		},
	},
	{
		Name:     "material-ui",
		Keywords: []string{"material-ui", "material ui", "mui"},
		Dependencies: map[string]string{
			"@mui/material":   "^5.13.0",
			"@emotion/react":  "^11.11.0",
			"@emotion/styled": "^11.11.0",
		},
	},
	{
		Name:     "redux",
		Keywords: []string{"redux"},
		Dependencies: map[string]string{
			"@reduxjs/toolkit": "^1.9.5",
			"react-redux":      "^8.1.0",
		},
	},
	{
		Name:     "router",
		Keywords: []string{"router"},
		Dependencies: map[string]string{
			"react-router-dom": "^6.13.0",
		},
	},
}

// PackageName lowercases the project name and replaces spaces with dashes.
func PackageName(projectName string) string {
	return strings.ReplaceAll(strings.ToLower(projectName), " ", "-")
}

// BuildManifest folds Triggers over the requirements text. The result depends
// only on its arguments.
func BuildManifest(projectName, requirementsText string) Manifest {
	lower := strings.ToLower(requirementsText)

	deps := CoreDependencies()
	for _, trigger := range Triggers {
		if !trigger.Matches(lower) {
			continue
		}
		for pkg, version := range trigger.Dependencies {
			deps[pkg] = version
		}
	}

	return Manifest{
		Name:            PackageName(projectName),
		Version:         "0.1.0",
		Private:         true,
		Dependencies:    deps,
		DevDependencies: DevDependencies(),
		Scripts: Scripts{
			Start: "react-scripts start",
			Build: "react-scripts build",
			Test:  "react-scripts test",
			Eject: "react-scripts eject",
		},
		ESLintConfig: ESLintConfig{
			Extends: []string{"react-app", "react-app/jest"},
		},
		Browserslist: Browserslist{
			Production:  []string{">0.2%", "not dead", "not op_mini all"},
			Development: []string{"last 1 chrome version", "last 1 firefox version", "last 1 safari version"},
		},
	}
}

// MarshalIndent renders the manifest as package.json content.
func (m Manifest) MarshalIndent() ([]byte, error) {
	data, err := marshalJSON(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return data, nil
}

// marshalJSON indents with two spaces and leaves <, > and & unescaped.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
