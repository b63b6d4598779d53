package railz

// Mutate creates a Step that applies transformer only when condition holds.
// Mutate never fails the chain: when the condition is false the context
// passes through untouched.
//
// Keeping the condition separate from the transformation makes both testable
// on their own:
//
//	discount := railz.Mutate(
//	    func(o *Order) { o.Total *= 0.9 },
//	    func(o Order) bool { return o.Tier == "premium" },
//	)
func Mutate[C any](transformer func(*C), condition func(C) bool) Step[C] {
	return func(c *C) bool {
		if condition(*c) {
			transformer(c)
		}
		return true
	}
}
