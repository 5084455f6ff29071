package pandoc

import "context"

// NewClient returns the best available Pandoc client: a ServerClient
// when server mode is supported on this OS and a pandoc-server
// process could be started, falling back to SubprocessClient
// otherwise (spec.md §4.5: subprocess mode is always the fallback).
func NewClient(ctx context.Context) Client {
	if ServerModeSupported() {
		if server, err := NewServerClient(ctx); err == nil {
			return server
		}
	}
	return NewSubprocessClient()
}
