package keyset

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry holds named orderings of a model, defined once and applied to any
// relation of it:
//
//	posts := keyset.NewRegistry[Post]()
//	_ = posts.Define("latest", keyset.Col("pinned", []any{true, false}), keyset.Col("published_at", "desc"))
//
//	latest, _ := posts.Ordering("latest")
//	point, err := latest.At(rel, post)
//	...
//	next, ok, err := point.Next(ctx, true)
type Registry[T any] struct {
	mu        sync.RWMutex
	orderings map[string]*NamedOrdering[T]
	opts      []Option
}

// NamedOrdering is a registered list of column specs.
type NamedOrdering[T any] struct {
	name  string
	specs []ColumnSpec
	opts  []Option
}

// NewRegistry returns an empty registry. opts apply to every order set it builds.
func NewRegistry[T any](opts ...Option) *Registry[T] {
	return &Registry[T]{
		orderings: make(map[string]*NamedOrdering[T]),
		opts:      opts,
	}
}

// Define registers specs under name, replacing a previous definition. The
// specs are checked against a relation only when the ordering is applied.
func (r *Registry[T]) Define(name string, specs ...ColumnSpec) error {
	if name == "" {
		return fmt.Errorf("cannot define ordering: empty name")
	}
	if len(specs) == 0 {
		return fmt.Errorf("cannot define ordering '%s': %w: empty ordering", name, ErrInvalidColumnSpec)
	}
	for _, spec := range specs {
		if err := spec.validate(); err != nil {
			return fmt.Errorf("cannot define ordering '%s': %w", name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orderings[name] = &NamedOrdering[T]{
		name:  name,
		specs: slices.Clone(specs),
		opts:  r.opts,
	}

	return nil
}

// Ordering looks a definition up by name.
func (r *Registry[T]) Ordering(name string) (*NamedOrdering[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orderings[name]
	if !ok {
		names := lo.Keys(r.orderings)
		slices.Sort(names)
		return nil, fmt.Errorf("%w '%s'. closest: '%s'", ErrUnknownOrdering, name, closest(name, names))
	}

	return o, nil
}

// Names lists the defined orderings, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.orderings)
	slices.Sort(names)

	return names
}

func (o *NamedOrdering[T]) Name() string {
	return o.name
}

// Specs returns a copy of the definition.
func (o *NamedOrdering[T]) Specs() []ColumnSpec {
	return slices.Clone(o.specs)
}

// On builds the order set of the definition over base.
func (o *NamedOrdering[T]) On(base Relation[T]) (*OrderSet[T], error) {
	set, err := NewOrderSet(base, o.specs, o.opts...)
	if err != nil {
		return nil, fmt.Errorf("ordering '%s': %w", o.name, err)
	}

	return set, nil
}

// Forward returns base in the defined order.
func (o *NamedOrdering[T]) Forward(base Relation[T]) (Relation[T], error) {
	set, err := o.On(base)
	if err != nil {
		return nil, err
	}

	return set.Forward(), nil
}

// Reverse returns base in the reverse of the defined order.
func (o *NamedOrdering[T]) Reverse(base Relation[T]) (Relation[T], error) {
	set, err := o.On(base)
	if err != nil {
		return nil, err
	}

	return set.Reverse(), nil
}

// At returns the point of row in the defined order over base.
func (o *NamedOrdering[T]) At(base Relation[T], row T) (*Point[T], error) {
	set, err := o.On(base)
	if err != nil {
		return nil, err
	}

	return set.At(row), nil
}
