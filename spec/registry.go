package spec

import (
	"fmt"
	"sort"
)

// Registry resolves Ref names. It is immutable once built and safe for
// concurrent use.
type Registry struct {
	named map[string]*NamedSpec
}

// NewRegistry indexes named specs by name.
func NewRegistry(named ...*NamedSpec) (*Registry, error) {
	r := &Registry{named: make(map[string]*NamedSpec, len(named))}
	for _, n := range named {
		if n == nil {
			continue
		}
		if _, dup := r.named[n.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n.name)
		}
		r.named[n.name] = n
	}
	return r, nil
}

// Lookup returns the spec registered under name. A nil registry is empty.
func (r *Registry) Lookup(name string) (*NamedSpec, bool) {
	if r == nil {
		return nil, false
	}
	n, ok := r.named[name]
	return n, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.named))
	for k := range r.named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.named)
}
