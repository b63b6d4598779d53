package railz

// Transform creates a Step from a mutation that cannot fail. The step always
// keeps the chain live.
//
// Transform is the simplest step - use it when the operation always succeeds:
//   - Normalizing fields (trimming, lowercasing)
//   - Accumulating or counting
//   - Applying precomputed configuration
//
// If the operation might fail, use Apply. For a conditional mutation, use Mutate.
//
// Example:
//
//	trim := railz.Transform(func(r *Request) {
//	    r.Path = strings.TrimSpace(r.Path)
//	})
func Transform[C any](fn func(*C)) Step[C] {
	return func(c *C) bool {
		fn(c)
		return true
	}
}
