package compiler

import (
	"fmt"
	"sort"
)

// Registry maps component names to components for the whole compile session.
type Registry struct {
	components map[string]*Component
}

// NewRegistry returns a registry holding the given components.
func NewRegistry(components ...*Component) *Registry {
	r := &Registry{components: make(map[string]*Component)}
	for _, c := range components {
		r.Add(c)
	}
	return r
}

// Add registers c under its name, replacing any previous component of that name.
func (r *Registry) Add(c *Component) {
	r.components[c.Name] = c
}

// Get returns the component registered under name.
func (r *Registry) Get(name string) (*Component, error) {
	c, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return c, nil
}

// Components returns every registered component in name order.
func (r *Registry) Components() []*Component {
	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Component, len(names))
	for i, n := range names {
		out[i] = r.components[n]
	}
	return out
}

// Ancestors returns c's extends chain, nearest parent first. A missing
// extends, a parent name that is not registered, and a name already seen on
// the chain all end the walk without error. cyclic reports the last case.
//
// Nothing is cached: every call walks the registry as it is now, so the order
// in which components were registered or scanned does not matter.
func (r *Registry) Ancestors(c *Component) (chain []*Component, cyclic bool) {
	seen := map[string]bool{c.Name: true}
	for name := c.Extends; name != ""; {
		parent, ok := r.components[name]
		if !ok {
			return chain, false
		}
		if seen[parent.Name] {
			return chain, true
		}
		seen[parent.Name] = true
		chain = append(chain, parent)
		name = parent.Extends
	}
	return chain, false
}

// ParentBindings returns every binding declared by c's ancestors, root-most
// ancestor first.
func (r *Registry) ParentBindings(c *Component) []*Binding {
	chain, _ := r.Ancestors(c)
	var out []*Binding
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Bindings...)
	}
	return out
}

// ParentTagIDs returns the union of every ancestor's tag ids.
func (r *Registry) ParentTagIDs(c *Component) map[string]bool {
	return r.collectIDs(c, func(a *Component) map[string]bool { return a.TagIDs })
}

// ParentFieldIDs returns the union of every ancestor's field ids.
func (r *Registry) ParentFieldIDs(c *Component) map[string]bool {
	return r.collectIDs(c, func(a *Component) map[string]bool { return a.FieldIDs })
}

func (r *Registry) collectIDs(c *Component, ids func(*Component) map[string]bool) map[string]bool {
	chain, _ := r.Ancestors(c)
	out := make(map[string]bool)
	for _, a := range chain {
		for id := range ids(a) {
			out[id] = true
		}
	}
	return out
}

// AllBindings returns the bindings generated for c: inherited ones first, in
// root-to-leaf order, then c's own.
func (r *Registry) AllBindings(c *Component) []*Binding {
	return append(r.ParentBindings(c), c.Bindings...)
}
