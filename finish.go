package railz

// Finalizer is implemented by function objects that can finish a chain.
type Finalizer[C, R any] interface {
	Finish(*C) R
}

// Finisher is the terminal element of a chain. It converts the context into
// a result and, unlike a Step, is never skipped. The zero Finisher has no
// function; build one with Finish, FinishValue or FinishWith.
type Finisher[C, R any] struct {
	fn func(*C) R
}

// Finish wraps fn as a Finisher. The context and result types are inferred
// from fn, so closures, plain functions and method values all work without
// type arguments:
//
//	total := railz.Finish(func(o *Order) float64 { return o.Total })
//	report := railz.Finish(builder.Report) // method value
func Finish[C, R any](fn func(*C) R) Finisher[C, R] {
	return Finisher[C, R]{fn: fn}
}

// FinishValue wraps a finisher that takes the context by value. It yields the
// same Finisher[C, R] as the pointer form; the context is still borrowed by
// the chain and only copied for the call.
func FinishValue[C, R any](fn func(C) R) Finisher[C, R] {
	return Finisher[C, R]{fn: func(c *C) R { return fn(*c) }}
}

// FinishWith adapts a Finalizer to a Finisher.
func FinishWith[C, R any](f Finalizer[C, R]) Finisher[C, R] {
	return Finisher[C, R]{fn: f.Finish}
}

// From runs the finisher against the chain's context and returns its result.
// The finisher runs whether or not the chain failed; it sees every mutation
// made up to the point of failure.
func (f Finisher[C, R]) From(ch Chain[C]) R {
	return f.fn(ch.ctx)
}

// Signature describes the context and result types the finisher was built
// for.
func (Finisher[C, R]) Signature() Signature {
	return SignatureOf[C, R]()
}

// End applies a finisher to the end of a chain and returns its result. End
// ignores the chain's success flag: the finisher always runs exactly once.
// Callers that need to know whether a step failed should have the steps
// record that in the context.
func End[C, R any](ch Chain[C], f Finisher[C, R]) R {
	return f.From(ch)
}
