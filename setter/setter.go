// Package setter binds single-argument mutators to values now and applies
// them to a target object later.
//
// A mutator is any func(*O, A) R, typically a method expression:
//
//	timeout := setter.For((*Client).SetTimeout)
//	retries := setter.For((*Client).SetRetries)
//
//	setter.Apply(client,
//	    timeout.To(5*time.Second),
//	    retries.To(3),
//	)
//
// Bound setters run in the order given. The mutator's result, if any, is
// discarded.
package setter

import "slices"

// Setter is a deferred invocation: a mutator with its argument already
// bound, waiting for a target.
type Setter[O any] func(*O)

// Factory produces setters for one mutator.
type Factory[O, A any] struct {
	mutate func(*O, A)
}

// For creates a Factory from a mutator. O, A and R are inferred from m.
func For[O, A, R any](m func(*O, A) R) Factory[O, A] {
	return Factory[O, A]{mutate: func(o *O, v A) { m(o, v) }}
}

// ForFunc creates a Factory from a mutator with no result.
func ForFunc[O, A any](m func(*O, A)) Factory[O, A] {
	return Factory[O, A]{mutate: m}
}

// To binds v and returns a setter that applies it.
func (f Factory[O, A]) To(v A) Setter[O] {
	mutate := f.mutate
	return func(o *O) {
		mutate(o, v)
	}
}

// Bind binds v to m in one call. It is shorthand for For(m).To(v).
func Bind[O, A, R any](m func(*O, A) R, v A) Setter[O] {
	return For(m).To(v)
}

// Apply applies setters to o in order. Nil setters are skipped.
func Apply[O any](o *O, setters ...Setter[O]) {
	for _, s := range setters {
		if s != nil {
			s(o)
		}
	}
}

// Join composes setters into one that applies them in order.
func Join[O any](setters ...Setter[O]) Setter[O] {
	setters = slices.Clone(setters)
	return func(o *O) {
		Apply(o, setters...)
	}
}
