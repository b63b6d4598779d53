package railz

// Apply creates a Step from an operation that may fail with an error. The
// chain itself carries no error values, so when fn fails Apply hands the error
// to record, which should store it in the context, and then fails the chain.
// record may be nil when the error carries nothing worth keeping.
//
// Apply is the workhorse step - use it for parsing, lookups and business
// rules that can be violated.
//
// Example:
//
//	parse := railz.Apply(
//	    func(b *Buffer) error {
//	        n, err := strconv.Atoi(b.Raw)
//	        b.Value = n
//	        return err
//	    },
//	    func(b *Buffer, err error) { b.Err = err },
//	)
func Apply[C any](fn func(*C) error, record func(*C, error)) Step[C] {
	return func(c *C) bool {
		if err := fn(c); err != nil {
			if record != nil {
				record(c, err)
			}
			return false
		}
		return true
	}
}
