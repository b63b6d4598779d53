package main

import (
	"context"
	"fmt"
	"io"

	"github.com/zoobzio/railz"
)

// AccumulatorScenario adds 5, fails a "not greater than 3" check and never
// reaches the step that would add 100. The finisher still reports 5.
type AccumulatorScenario struct{}

func (*AccumulatorScenario) Name() string { return "accumulator" }

func (*AccumulatorScenario) Description() string {
	return "Sticky failure: a failed check skips the rest, the finisher still runs"
}

func (*AccumulatorScenario) Graph() *Definition {
	return &Definition{
		Name: "accumulator",
		Stages: []Node{
			{ID: "add5", Op: OpAdd, Arg: 5},
			{ID: "at-most-3", Op: OpLe, Arg: 3},
			{ID: "add100", Op: OpAdd, Arg: 100},
		},
		Finish: Node{ID: "result", Op: OpFinish, Arg: 1},
	}
}

func (s *AccumulatorScenario) Run(ctx context.Context, e *env) error {
	printHeader(e.out, s)
	_, err := runAccumulator(ctx, e, s.Graph(), 0)
	return err
}

// EmptyScenario runs a chain with no steps; the finisher doubles the
// untouched accumulator.
type EmptyScenario struct{}

func (*EmptyScenario) Name() string { return "empty" }

func (*EmptyScenario) Description() string {
	return "Empty chain: the finisher runs on the initial context"
}

func (*EmptyScenario) Graph() *Definition {
	return &Definition{
		Name:   "empty",
		Finish: Node{ID: "double", Op: OpFinish, Arg: 2},
	}
}

func (s *EmptyScenario) Run(ctx context.Context, e *env) error {
	printHeader(e.out, s)
	_, err := runAccumulator(ctx, e, s.Graph(), 0)
	return err
}

// runAccumulator builds def, runs it once from initial and prints what
// happened.
func runAccumulator(ctx context.Context, e *env, def *Definition, initial int) (int, error) {
	p, err := def.Build()
	if err != nil {
		return 0, err
	}
	defer p.Close()

	sl, err := watch(e, p)
	if err != nil {
		return 0, err
	}

	acc := initial
	result := runLogged(ctx, sl, p, &acc)
	report(e.out, p)
	fmt.Fprintf(e.out, "  %-10s %d\n", "result", result)
	return result, nil
}

// report prints a run summary from the pipeline's metrics.
func report[C, R any](w io.Writer, p *railz.Pipeline[C, R]) {
	m := p.Metrics()
	total := int(m.Gauge(railz.PipelineStepsTotal).Value())
	completed := int(m.Gauge(railz.PipelineStepsCompleted).Value())
	skipped := int(m.Counter(railz.PipelineStepsSkippedTotal).Value())

	status := colorGreen + "passed" + colorReset
	if m.Counter(railz.PipelineFailuresTotal).Value() > 0 {
		status = colorRed + "failed" + colorReset
	}
	fmt.Fprintf(w, "  %-10s %s\n", "chain", status)
	fmt.Fprintf(w, "  %-10s %d of %d\n", "passed", completed, total)
	fmt.Fprintf(w, "  %-10s %d\n", "skipped", skipped)
}

func printHeader(w io.Writer, s Scenario) {
	fmt.Fprintf(w, "\n%s═══ %s ═══%s\n", colorCyan, s.Name(), colorReset)
	fmt.Fprintf(w, "%s%s%s\n", colorGray, s.Description(), colorReset)
}
