// Package strategies implements the uniform search-strategy abstraction and
// the rotator that fans out across them with per-strategy cooldown. Each
// strategy produces catalog search parameters; the set of strategies is a
// compile-time-registered mapping from name to constructor (Design Notes:
// "dynamic strategy loading" is replaced by a static registry so
// configuration still names strategies by string).
package strategies

import (
	"context"
	"strings"
)

// Params is the search parameter shape a strategy produces: either a single
// Term or a list of Terms, optionally scoped by Entity/Attribute.
type Params struct {
	Term      string
	Terms     []string
	Entity    string
	Attribute string
}

// Normalize trims Term/Terms, drops empty entries, and reports whether the
// result is valid per spec.md 4.5 (a non-empty trimmed term, or a non-empty
// terms list after trimming).
func (p *Params) Normalize() bool {
	p.Term = strings.TrimSpace(p.Term)
	if len(p.Terms) > 0 {
		trimmed := make([]string, 0, len(p.Terms))
		for _, t := range p.Terms {
			t = strings.TrimSpace(t)
			if t != "" {
				trimmed = append(trimmed, t)
			}
		}
		p.Terms = trimmed
	}
	return p.Term != "" || len(p.Terms) > 0
}

// Strategy produces catalog search parameters. Implementations may hit the
// network (chart feed, LLM) and must respect ctx cancellation.
type Strategy interface {
	GenerateParams(ctx context.Context) (Params, error)
}

// Registry is the compile-time-registered mapping from strategy name to
// constructor, replacing the source's directory-scan discovery.
type Registry struct {
	constructors map[string]func() Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]func() Strategy)}
}

// Register adds a named constructor. Re-registering a name overwrites it.
func (r *Registry) Register(name string, ctor func() Strategy) {
	r.constructors[name] = ctor
}

// Build instantiates every strategy whose name appears in names, in order,
// skipping names with no registered constructor.
func (r *Registry) Build(names []string) []namedStrategy {
	out := make([]namedStrategy, 0, len(names))
	for _, name := range names {
		ctor, ok := r.constructors[name]
		if !ok {
			continue
		}
		out = append(out, namedStrategy{name: name, strategy: ctor()})
	}
	return out
}

type namedStrategy struct {
	name     string
	strategy Strategy
}
