// Package railz chains fallible steps over one shared, caller-owned context.
//
// # Overview
//
// A chain starts over a pointer to your context, runs steps in order while
// each one reports success, skips every step after the first failure, and
// always ends with a finisher that turns the context into a result:
//
//	acc := 0
//	result := railz.End(
//	    railz.Start(&acc).
//	        Then(railz.Transform(func(n *int) { *n += 5 })).
//	        Then(railz.Check(func(n int) bool { return n <= 3 })). // fails
//	        Then(railz.Transform(func(n *int) { *n += 100 })),     // skipped
//	    railz.Finish(func(n *int) int { return *n }),
//	)
//	// result == 5
//
// # Core Concepts
//
//   - Step[C]: func(*C) bool. Mutates the context and reports success.
//   - Chain[C]: the state of one evaluation (context pointer + success flag).
//     Start creates it; Then returns the next state.
//   - Finisher[C, R]: the terminal element. Finish infers C and R from the
//     function you pass, so closures, functions and method values all work
//     without type arguments.
//   - End: applies a finisher to a chain. The finisher runs whether or not a
//     step failed.
//
// Failure is sticky: once a step returns false no later step is invoked, no
// matter what it would have returned. The chain carries no error values; a
// step that has something to say about a failure writes it into the context,
// and the finisher (or the caller) reads it back.
//
// Evaluation is synchronous and runs on the calling goroutine. There is no
// suspension, no parallel evaluation and no retry.
//
// # Adapter Functions
//
// Adapters build steps from common function shapes:
//
//   - Transform: mutation that cannot fail
//   - Check: read-only predicate
//   - Apply: operation that can fail with an error, recorded into the context
//   - Effect: side effect on a copy of the context
//   - Mutate: conditional mutation
//   - Enrich: best-effort mutation that never fails the chain
//   - Not: inverts a step's verdict
//
// # Pipelines
//
// Pipeline packages stages and a finisher into a reusable, named definition
// with metrics (metricz), tracing (tracez) and events (hookz). It runs through
// the same Start/Then/End path, so it keeps every property of a hand-written
// chain.
//
//	p := railz.NewPipeline("checkout",
//	    railz.Finish(func(o *Order) Receipt { return o.Receipt() }),
//	    railz.NewStage("validate", validate),
//	    railz.NewStage("price", price),
//	)
//	receipt := p.Run(ctx, &order)
package railz
