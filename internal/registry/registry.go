// Package registry implements the generic, name-keyed, priority-ordered
// plugin registry of spec.md §4.2, instantiated once per plugin kind
// (extractors, OCR backends, validators, post-processors).
//
// The registration/removal shape (validate name, call lifecycle hook,
// insert; removal calls shutdown then deletes) is grounded on the
// teacher's tool-registration pattern in internal/mcp/tool.go and
// internal/mcp/server.go, generalized from "one constructor registers
// one handler on *server.MCPServer" into a reusable generic registry.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Plugin is the minimum contract every registry entry satisfies
// (spec.md §4.2).
type Plugin interface {
	Name() string
	Initialize() error
	Shutdown() error
}

// Registry is a single readers-writer-locked, name-keyed store of
// plugins of type P. Reads dominate after startup (spec.md §4.2/§5).
type Registry[P Plugin] struct {
	mu      sync.RWMutex
	entries map[string]P
	order   []string // registration order, for stable tie-breaks
}

// New returns an empty registry.
func New[P Plugin]() *Registry[P] {
	return &Registry[P]{entries: make(map[string]P)}
}

// Register validates name (non-empty, no whitespace), calls
// p.Initialize(), and inserts it. Re-registration with the same name
// replaces the previous entry after calling its Shutdown().
func (r *Registry[P]) Register(p P) error {
	name := p.Name()
	if name == "" {
		return errors.New("registry: plugin name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("registry: plugin name %q must not contain whitespace", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		if err := existing.Shutdown(); err != nil {
			return fmt.Errorf("registry: shutting down previous %q: %w", name, err)
		}
	} else {
		r.order = append(r.order, name)
	}

	if err := p.Initialize(); err != nil {
		return fmt.Errorf("registry: initializing %q: %w", name, err)
	}
	r.entries[name] = p
	return nil
}

// Remove calls p.Shutdown() and removes it. Removing an absent name is
// a no-op success.
func (r *Registry[P]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.entries[name]
	if !ok {
		return nil
	}
	delete(r.entries, name)
	r.order = removeName(r.order, name)
	return p.Shutdown()
}

func removeName(order []string, name string) []string {
	out := order[:0:0]
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// List returns a snapshot of registered plugin names, in registration
// order.
func (r *Registry[P]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the plugin registered under name, if any.
func (r *Registry[P]) Get(name string) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[name]
	return p, ok
}

// All returns every registered plugin, in registration order.
func (r *Registry[P]) All() []P {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]P, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.entries[n])
	}
	return out
}

// ShutdownAll drains the registry, calling Shutdown on every entry.
// Errors from individual shutdowns are aggregated but every entry is
// still attempted.
func (r *Registry[P]) ShutdownAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, n := range r.order {
		if err := r.entries[n].Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n, err))
		}
	}
	r.entries = make(map[string]P)
	r.order = nil
	return errors.Join(errs...)
}

// SelectByPriority picks the entry with the highest priority among
// those for which claims(p) is true, breaking ties by registration
// order (spec.md §4.2: "selection is by highest priority() among those
// whose ... claim the input; ties are broken by registration order").
func SelectByPriority[P Plugin](r *Registry[P], priority func(P) int, claims func(P) bool) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    P
		bestSet bool
		bestPri int
	)
	for _, n := range r.order {
		p := r.entries[n]
		if !claims(p) {
			continue
		}
		pri := priority(p)
		if !bestSet || pri > bestPri {
			best, bestPri, bestSet = p, pri, true
		}
	}
	return best, bestSet
}
