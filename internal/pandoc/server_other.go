//go:build windows

package pandoc

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

// ServerClient is unavailable on this OS; every method reports
// MissingDependency so callers fall back to SubprocessClient (spec.md
// §4.5's recorded decision: server mode is Unix-only).
type ServerClient struct{}

// NewServerClient always fails on this OS.
func NewServerClient(ctx context.Context) (*ServerClient, error) {
	return nil, kerr.MissingDependency("pandoc-server", "server mode is unavailable on this OS; use subprocess mode")
}

func (c *ServerClient) ToJSON(ctx context.Context, content []byte, fromFormat string) (AST, error) {
	return AST{}, kerr.MissingDependency("pandoc-server", "server mode is unavailable on this OS")
}

func (c *ServerClient) Close() error { return nil }

// ServerModeSupported reports whether server mode can be attempted on
// this OS.
func ServerModeSupported() bool { return false }
