package railz

// When creates a Step that runs step only when condition holds. When the
// condition is false the context passes through unchanged and the chain stays
// live; otherwise the wrapped step's verdict is the result.
//
// When provides a clean way to implement conditional stages without if-else
// logic scattered through the steps themselves:
//
//	verifyAddress := railz.When(
//	    func(o Order) bool { return o.Shipping },
//	    railz.Apply(lookupAddress, recordErr),
//	)
//
// Unlike Mutate, the wrapped step can fail the chain.
func When[C any](condition func(C) bool, step Step[C]) Step[C] {
	return func(c *C) bool {
		if !condition(*c) {
			return true
		}
		return step(c)
	}
}
