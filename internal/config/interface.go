package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from path (a file or a directory), resolves
	// every expression and returns the validated model.
	Load(ctx context.Context, path string) (*Model, error)
}
