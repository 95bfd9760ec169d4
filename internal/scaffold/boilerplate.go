package scaffold

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"github.com/dotcommander/frontgen/internal/storage"
)

//go:embed templates/*
var templates embed.FS

// Component is a generated source file listed in the project README.
type Component struct {
	Name string
	Path string
}

// File is a rendered project file, relative to the project root.
type File struct {
	Path    string
	Content []byte
}

func render(name string, data any) ([]byte, error) {
	tmplContent, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Boilerplate renders the static project files: HTML shell, bootstrap,
// base stylesheet and a README listing the generated components.
func Boilerplate(projectName string, components []Component) ([]File, error) {
	data := struct {
		ProjectName string
		Components  []Component
	}{projectName, components}

	targets := []struct{ tmpl, path string }{
		{"index.html.tmpl", "public/index.html"},
		{"index.tsx.tmpl", "src/index.tsx"},
		{"index.css.tmpl", "src/index.css"},
		{"README.md.tmpl", "README.md"},
	}

	files := make([]File, 0, len(targets))
	for _, t := range targets {
		content, err := render(t.tmpl, data)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: t.path, Content: content})
	}
	return files, nil
}

// WriteFiles saves files into the project, stopping at the first failure.
func WriteFiles(ctx context.Context, project storage.Storage, files []File) error {
	for _, f := range files {
		if err := project.Save(ctx, f.Path, f.Content); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	return nil
}

// Test runner frameworks.
const (
	FrameworkJest   = "jest"
	FrameworkVitest = "vitest"
)

type coverageThreshold struct {
	Branches   int `json:"branches"`
	Functions  int `json:"functions"`
	Lines      int `json:"lines"`
	Statements int `json:"statements"`
}

type jestConfig struct {
	Preset              string            `json:"preset"`
	TestEnvironment     string            `json:"testEnvironment"`
	SetupFilesAfterEnv  []string          `json:"setupFilesAfterEnv"`
	ModuleNameMapper    map[string]string `json:"moduleNameMapper"`
	CollectCoverageFrom []string          `json:"collectCoverageFrom"`
	CoverageThreshold   struct {
		Global coverageThreshold `json:"global"`
	} `json:"coverageThreshold"`
}

// TestConfig renders the runner configuration and src/setupTests.ts for
// framework, enforcing threshold percent coverage.
func TestConfig(framework string, threshold int) ([]File, error) {
	var runner File
	switch framework {
	case FrameworkJest:
		cfg := jestConfig{
			Preset:             "ts-jest",
			TestEnvironment:    "jsdom",
			SetupFilesAfterEnv: []string{"<rootDir>/src/setupTests.ts"},
			ModuleNameMapper:   map[string]string{"^@/(.*)$": "<rootDir>/src/$1"},
			CollectCoverageFrom: []string{
				"src/**/*.{ts,tsx}",
				"!src/**/*.d.ts",
				"!src/index.tsx",
				"!src/reportWebVitals.ts",
			},
		}
		cfg.CoverageThreshold.Global = coverageThreshold{threshold, threshold, threshold, threshold}

		data, err := marshalJSON(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling jest config: %w", err)
		}
		runner = File{Path: "jest.config.js", Content: []byte(fmt.Sprintf("module.exports = %s;\n", bytes.TrimSpace(data)))}
	case FrameworkVitest:
		content, err := render("vitest.config.ts.tmpl", struct{ Threshold int }{threshold})
		if err != nil {
			return nil, err
		}
		runner = File{Path: "vitest.config.ts", Content: content}
	default:
		return nil, fmt.Errorf("unsupported test framework %q", framework)
	}

	mock := "jest"
	if framework == FrameworkVitest {
		mock = "vi"
	}
	setup, err := render("setupTests.ts.tmpl", struct{ Framework, Mock string }{framework, mock})
	if err != nil {
		return nil, err
	}

	return []File{runner, {Path: "src/setupTests.ts", Content: setup}}, nil
}
