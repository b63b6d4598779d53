package railz

// Effect creates a Step that performs a side effect without modifying the
// context. fn receives a copy of the context; a returned error fails the
// chain but is otherwise discarded, so Effect suits audits and guards whose
// failure needs no further detail.
//
// For shallow copies, fields holding pointers, slices or maps still share
// memory with the original. Effect is a convention, not a guarantee.
//
// Example:
//
//	audit := railz.Effect(func(o Order) error {
//	    return auditLog.Record(o.ID)
//	})
func Effect[C any](fn func(C) error) Step[C] {
	return func(c *C) bool {
		return fn(*c) == nil
	}
}
