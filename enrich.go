package railz

// Enrich creates a Step for best-effort enhancements. fn may fail, but the
// failure never fails the chain. Whatever fn changed before returning the
// error stays in the context.
//
// Use Enrich for data that is nice to have: cached lookups, optional
// metadata, derived display fields. If the data is required, use Apply.
func Enrich[C any](fn func(*C) error) Step[C] {
	return func(c *C) bool {
		_ = fn(c) //nolint:errcheck // failures are tolerated by definition
		return true
	}
}
