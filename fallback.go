package railz

// Fallback creates a Step that tries alternatives in order and passes with
// the first one that passes. If every alternative fails, so does the step.
// With no alternatives the step always fails.
//
// Each alternative runs on the same context, so mutations made by a failed
// alternative are visible to the next one. Alternatives that must not leave
// partial state behind should only write on success.
//
// Common use cases:
//   - Reading a value from one of several fields or formats
//   - Primary lookup with a cheaper default
//   - Accepting more than one version of an encoding
//
// Example:
//
//	parseTimestamp := railz.Fallback(
//	    railz.Apply(parseRFC3339, nil),
//	    railz.Apply(parseUnixSeconds, nil),
//	)
//
// Fallback is not retry: every alternative is a different step and each runs
// at most once.
func Fallback[C any](alternatives ...Step[C]) Step[C] {
	return func(c *C) bool {
		for _, step := range alternatives {
			if step(c) {
				return true
			}
		}
		return false
	}
}
