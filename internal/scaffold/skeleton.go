// Package scaffold lays out the generated React project: directory skeleton,
// package.json, static boilerplate and test runner configuration.
package scaffold

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dotcommander/frontgen/internal/storage"
)

// SkeletonDirs is the fixed directory set of every generated project.
var SkeletonDirs = []string{
	"src/components",
	"src/pages",
	"src/hooks",
	"src/utils",
	"src/types",
	"src/styles",
	"src/assets",
	"public",
}

// ProjectDir returns {baseDir}/{projectName}_frontend.
func ProjectDir(baseDir, projectName string) string {
	return filepath.Join(baseDir, projectName+"_frontend")
}

// CreateSkeleton creates the project directory and SkeletonDirs. Calling it
// again on an existing project is a no-op.
func CreateSkeleton(ctx context.Context, baseDir, projectName string) (string, error) {
	projectPath := ProjectDir(baseDir, projectName)
	fs := storage.NewFileSystem(projectPath)
	if err := fs.EnsureDirs(ctx, SkeletonDirs...); err != nil {
		return "", fmt.Errorf("creating project skeleton: %w", err)
	}
	return projectPath, nil
}
