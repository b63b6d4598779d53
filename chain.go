package railz

// Step is a single unit of work in a chain. It mutates the context through
// the pointer it receives and reports whether the chain should stay live.
//
// A step signals failure only through its return value. Anything richer than
// "it failed" belongs in the context itself, where the finisher can read it.
type Step[C any] func(*C) bool

// Chain is the state of one chain evaluation: a borrowed context and a
// success flag. Chain is a small value; every call to Then returns a new one,
// so the flag is threaded through return values rather than mutated behind
// the caller's back.
//
// The context must outlive the chain expression. Starting two chains over the
// same context and interleaving them is not supported.
type Chain[C any] struct {
	ctx  *C
	good bool
}

// Start begins a new chain bound to c. The chain is live until a step
// returns false.
//
//	acc := 0
//	result := railz.End(
//	    railz.Start(&acc).
//	        Then(add(5)).
//	        Then(atMost(3)).
//	        Then(add(100)), // skipped
//	    railz.Finish(func(n *int) int { return *n }),
//	) // result == 5
func Start[C any](c *C) Chain[C] {
	return Chain[C]{ctx: c, good: true}
}

// Then runs step against the context if the chain is still live. The step's
// verdict becomes the new state. Once a step has failed, later steps are not
// invoked and the chain stays failed.
func (ch Chain[C]) Then(step Step[C]) Chain[C] {
	if ch.good {
		ch.good = step(ch.ctx)
	}
	return ch
}

// ThenAll chains steps left to right, as if Then were called once per step.
func (ch Chain[C]) ThenAll(steps ...Step[C]) Chain[C] {
	for _, step := range steps {
		ch = ch.Then(step)
	}
	return ch
}
