// Package upload pushes regenerated artifacts to remote storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Provider is a remote storage backend for regenerated artifacts.
type Provider interface {
	// Upload stores the content read from reader under remotePath.
	Upload(ctx context.Context, reader io.Reader, remotePath string) error

	// Configure sets up the provider from the config layer's settings map.
	Configure(settings map[string]any) error

	// Name returns the provider name.
	Name() string
}

// Factory creates a new provider instance.
type Factory func() Provider

var registry = make(map[string]Factory)

// Register makes a provider available under the given name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New creates a provider instance by name.
func New(name string) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown upload provider: %s", name)
	}
	return factory(), nil
}

// Sync uploads each artifact under its path relative to the fixtures root,
// so the remote layout mirrors the tree. Failures are collected per artifact;
// one failed upload does not stop the rest.
func Sync(ctx context.Context, p Provider, root string, artifacts []string) []error {
	var errs []error
	for _, path := range artifacts {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		if err := uploadFile(ctx, p, path, filepath.ToSlash(rel)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
		}
	}
	return errs
}

func uploadFile(ctx context.Context, p Provider, local, remote string) error {
	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.Upload(ctx, f, remote)
}
