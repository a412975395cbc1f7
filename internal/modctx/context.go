// Package modctx implements the module-context arena: the compiler's
// representation of a specific instantiation path from the root module down
// to some instance. Contexts live in an append-only, pointer-identity
// arena, and a Context interns its children so repeated descents along the
// same instance return the identical pointer, which is what lets the
// compiler treat (context, signal) pairs as a memoization key by address.
package modctx

import "github.com/ar90n/kaze/internal/graph"

// Context identifies a complete instantiation path. The zero value is not
// meaningful; obtain the root via Arena.Root and children via Child.
type Context struct {
	instance *graph.Instance // nil at the root
	parent   *Context        // nil at the root

	children map[*graph.Instance]*Context
}

// IsRoot reports whether c is the top-level module's context.
func (c *Context) IsRoot() bool {
	return c.instance == nil
}

// InstanceAndParent returns the instance this context was reached through, and the
// parent context it is relative to. Only valid when !IsRoot().
func (c *Context) InstanceAndParent() (*graph.Instance, *Context) {
	return c.instance, c.parent
}

// Arena owns every Context allocated during one compilation run. It is
// constructed fresh per run; there is no package-level arena.
type Arena struct {
	root *Context
}

// NewArena returns an Arena with its root Context already allocated.
func NewArena() *Arena {
	return &Arena{root: &Context{children: make(map[*graph.Instance]*Context)}}
}

// Root returns the root Context.
func (a *Arena) Root() *Context {
	return a.root
}

// Child returns the Context reached by descending into instance from
// parent, allocating and interning it on first request. Two calls with the
// same (parent, instance) pair always return the identical pointer, so
// pointer equality of *Context suffices for the compiler's memoization
// keys.
func (a *Arena) Child(parent *Context, instance *graph.Instance) *Context {
	if child, ok := parent.children[instance]; ok {
		return child
	}
	child := &Context{
		instance: instance,
		parent:   parent,
		children: make(map[*graph.Instance]*Context),
	}
	parent.children[instance] = child
	return child
}
