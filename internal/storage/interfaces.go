package storage

import "context"

// Storage is the project tree stages write generated files into.
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, pattern string) ([]string, error)
	Exists(ctx context.Context, path string) bool
	EnsureDirs(ctx context.Context, dirs ...string) error
}
