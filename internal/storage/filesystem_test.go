package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFileSystemSecurity(t *testing.T) {
	parent := t.TempDir()
	projectDir := filepath.Join(parent, "shop_frontend")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	outsideFile := filepath.Join(parent, "outside.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSystem(projectDir)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool // true if should succeed
		}{
			{"component", "src/components/Header.tsx", true},
			{"test file", "src/__tests__/unit/Header.test.tsx", true},
			{"parent traversal", "../Header.test.tsx", false},
			{"complex traversal", "src/../../Header.test.tsx", false},
			{"absolute path", "/etc/passwd", false},
			{"hidden traversal", "src/__tests__/../../../../etc/passwd", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.path, []byte("test"))
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		if err := fs.Save(ctx, "package.json", []byte("{}")); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name string
			path string
			want bool
		}{
			{"normal path", "package.json", true},
			{"parent traversal", "../outside.txt", false},
			{"absolute path", outsideFile, false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fs.Load(ctx, tt.path)
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for path %q, got none", tt.path)
				}
			})
		}
	})

	t.Run("List prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name    string
			pattern string
			want    bool
		}{
			{"normal pattern", "*.json", true},
			{"recursive pattern", "src/**/*.{ts,tsx}", true},
			{"parent traversal", "../*", false},
			{"absolute pattern", "/etc/*", false},
			{"malformed pattern", "src/[", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fs.List(ctx, tt.pattern)
				if tt.want && err != nil {
					t.Errorf("expected success, got error: %v", err)
				}
				if !tt.want && err == nil {
					t.Errorf("expected error for pattern %q, got none", tt.pattern)
				}
			})
		}
	})
}

func TestFileSystemList(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	files := []string{
		"src/App.tsx",
		"src/components/Header.tsx",
		"src/components/nav/Menu.tsx",
		"src/utils/format.ts",
		"src/index.css",
		"public/index.html",
	}
	for _, f := range files {
		if err := fs.Save(ctx, f, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"src/components/**/*.tsx", []string{"src/components/Header.tsx", "src/components/nav/Menu.tsx"}},
		{"src/**/*.{ts,tsx,js,jsx}", []string{"src/App.tsx", "src/components/Header.tsx", "src/components/nav/Menu.tsx", "src/utils/format.ts"}},
		{"src/pages/**/*.tsx", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := fs.List(ctx, tt.pattern)
			if err != nil {
				t.Fatalf("List(%q) error: %v", tt.pattern, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnsureDirsIsIdempotent(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := fs.EnsureDirs(ctx, "src/components", "public"); err != nil {
			t.Fatalf("EnsureDirs pass %d: %v", i, err)
		}
	}
	if !fs.Exists(ctx, "src/components") || !fs.Exists(ctx, "public") {
		t.Error("expected directories to exist")
	}
	if err := fs.EnsureDirs(ctx, "../escape"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestSanitizePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewFileSystem(tempDir)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "package.json", false},
		{"nested file", "src/pages/Dashboard.tsx", false},
		{"dot file", ".gitignore", false},
		{"parent directory", "../file.txt", true},
		{"sneaky parent", "src/../../../etc/passwd", true},
		{"absolute path", "/etc/passwd", true},
		{"empty path", "", false},
		{"dot path", ".", false},
		{"double dot", "..", true},
		{"contains double dot", "some/..thing/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.sanitizePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("sanitizePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
				return
			}
			if err == nil && !strings.HasPrefix(got, fs.Root()) {
				t.Errorf("sanitizePath(%q) = %q, not under base directory %q", tt.path, got, fs.Root())
			}
		})
	}
}
