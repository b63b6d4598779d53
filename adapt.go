package railz

// Check creates a Step from a read-only predicate. The predicate sees a copy
// of the context and its result becomes the step's verdict.
//
//	positive := railz.Check(func(n int) bool { return n > 0 })
func Check[C any](pred func(C) bool) Step[C] {
	return func(c *C) bool {
		return pred(*c)
	}
}

// Not inverts the verdict of step. The wrapped step still runs and its
// mutations stand.
func Not[C any](step Step[C]) Step[C] {
	return func(c *C) bool {
		return !step(c)
	}
}
