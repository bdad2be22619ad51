// Package format holds named string predicates referenced from validation tags
// and the tag aliases that expand into constraint lists.
package format

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/reoring/tagskema/constraint"
)

// Predicate reports whether s satisfies a named format.
type Predicate func(s string) bool

// ErrDuplicateName is returned when a format or alias name is already registered.
var ErrDuplicateName = errors.New("format: name already registered")

// Registry maps format names to predicates. It is append-only and safe for
// concurrent use; every successful registration bumps Version.
type Registry struct {
	mu      sync.RWMutex
	preds   map[string]Predicate
	aliases map[string]string
	version atomic.Uint64
}

// NewRegistry returns a registry preloaded with the built-in formats.
func NewRegistry() *Registry {
	r := &Registry{preds: make(map[string]Predicate), aliases: make(map[string]string)}
	for name, p := range builtins() {
		r.preds[name] = p
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry shared by validators that do not
// supply their own.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewRegistry() })
	return defaultReg
}

// Register adds a predicate. Names of built-in constraints, markers and
// existing formats or aliases are rejected.
func (r *Registry) Register(name string, p Predicate) error {
	if name == "" || p == nil {
		return fmt.Errorf("format: empty name or nil predicate")
	}
	if constraint.IsReserved(name) {
		return fmt.Errorf("format %q: %w", name, constraint.ErrReservedName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.preds[name] = p
	r.version.Add(1)
	return nil
}

// RegisterAlias makes name expand to tag wherever it appears in a validation tag.
// The tag must parse against the registry as it is at registration time.
func (r *Registry) RegisterAlias(name, tag string) error {
	if name == "" {
		return fmt.Errorf("format: empty alias name")
	}
	if constraint.IsReserved(name) {
		return fmt.Errorf("alias %q: %w", name, constraint.ErrReservedName)
	}
	if _, err := constraint.Parse(tag, r); err != nil {
		return fmt.Errorf("alias %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.aliases[name] = tag
	r.version.Add(1)
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.preds[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Lookup returns the predicate registered under name.
func (r *Registry) Lookup(name string) (Predicate, bool) {
	r.mu.RLock()
	p, ok := r.preds[name]
	r.mu.RUnlock()
	return p, ok
}

// Match evaluates the named predicate. ok is false when the name is unknown.
func (r *Registry) Match(name, s string) (matched, ok bool) {
	p, ok := r.Lookup(name)
	if !ok {
		return false, false
	}
	return p(s), true
}

// HasFormat implements constraint.Resolver.
func (r *Registry) HasFormat(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Alias implements constraint.Resolver.
func (r *Registry) Alias(name string) (string, bool) {
	r.mu.RLock()
	tag, ok := r.aliases[name]
	r.mu.RUnlock()
	return tag, ok
}

// Names lists registered format names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.preds))
	for name := range r.preds {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Version increases on every registration. Descriptor caches compare it to
// detect stale entries.
func (r *Registry) Version() uint64 { return r.version.Load() }

var _ constraint.Resolver = (*Registry)(nil)
