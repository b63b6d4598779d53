package railz

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for Pipeline.
const (
	// Metrics.
	PipelineRunsTotal          = metricz.Key("pipeline.runs.total")
	PipelineSuccessesTotal     = metricz.Key("pipeline.successes.total")
	PipelineFailuresTotal      = metricz.Key("pipeline.failures.total")
	PipelineStepsSkippedTotal  = metricz.Key("pipeline.steps.skipped.total")
	PipelineStepsPanicsTotal   = metricz.Key("pipeline.steps.panics.total")
	PipelineStepsTotal         = metricz.Key("pipeline.steps.total")
	PipelineStepsCompleted     = metricz.Key("pipeline.steps.completed")
	PipelineDurationMs         = metricz.Key("pipeline.duration.ms")
	PipelineEventsDroppedTotal = metricz.Key("pipeline.events.dropped.total")

	// Spans.
	PipelineRunSpan    = tracez.Key("pipeline.run")
	PipelineStageSpan  = tracez.Key("pipeline.stage")
	PipelineFinishSpan = tracez.Key("pipeline.finish")

	// Tags.
	PipelineTagName        = tracez.Tag("pipeline.name")
	PipelineTagStageCount  = tracez.Tag("pipeline.stage_count")
	PipelineTagContextType = tracez.Tag("pipeline.context_type")
	PipelineTagResultType  = tracez.Tag("pipeline.result_type")
	PipelineTagSuccess     = tracez.Tag("pipeline.success")
	PipelineTagStageName   = tracez.Tag("pipeline.stage_name")
	PipelineTagStageNumber = tracez.Tag("pipeline.stage_number")
	PipelineTagOutcome     = tracez.Tag("pipeline.outcome")
	PipelineTagPanic       = tracez.Tag("pipeline.panic")

	// Hook event keys.
	PipelineEventStageComplete = hookz.Key("pipeline.stage_complete")
	PipelineEventStageSkipped  = hookz.Key("pipeline.stage_skipped")
	PipelineEventFinished      = hookz.Key("pipeline.finished")
)

// Outcome describes what happened to a stage during a run.
type Outcome string

// Stage outcomes.
const (
	OutcomePassed   Outcome = "passed"   // ran and kept the chain live
	OutcomeFailed   Outcome = "failed"   // ran and failed the chain
	OutcomePanicked Outcome = "panicked" // panicked; counted as a failure
	OutcomeSkipped  Outcome = "skipped"  // not invoked, the chain had already failed
)

// PipelineEvent is emitted via hookz as stages run or are skipped, and once
// more after the finisher has produced a result.
type PipelineEvent struct {
	Name            Name          // Pipeline name
	StageName       Name          // Stage name (stage events)
	StageNumber     int           // Stage number, 1-based (stage events)
	TotalStages     int           // Number of stages in this run
	Outcome         Outcome       // Stage outcome (stage events)
	Panic           string        // Recovered panic message, if any
	Duration        time.Duration // Stage duration (stage events)
	Success         bool          // Whether every stage passed (finished event)
	CompletedStages int           // Stages that passed (finished event)
	SkippedStages   int           // Stages not invoked (finished event)
	TotalDuration   time.Duration // Whole run including the finisher (finished event)
	Timestamp       time.Time     // When the event occurred
}

// Pipeline is a reusable, named chain definition: an ordered list of stages
// and a finisher. Every Run starts a fresh chain over the caller's context
// with Start, feeds it each stage through Then and ends it with End, so a
// Pipeline has exactly the semantics of a hand-written chain:
//   - stages run in order while every stage passes
//   - after the first failure the remaining stages are skipped
//   - the finisher always runs and its result is returned
//
// On top of that, Pipeline adds what a bare chain cannot carry: stage names,
// runtime modification of the stage list, and observability.
//
// A stage that panics is recovered and treated as a failed step. A panic in
// the finisher is not recovered, because there is no result to return.
//
// Pipeline is safe for concurrent use. Each Run works on a snapshot of the
// stage list, and concurrent runs must use distinct contexts.
//
// # Observability
//
// Metrics:
//   - pipeline.runs.total: Counter of runs
//   - pipeline.successes.total: Counter of runs where every stage passed
//   - pipeline.failures.total: Counter of runs where a stage failed
//   - pipeline.steps.skipped.total: Counter of stages skipped after a failure
//   - pipeline.steps.panics.total: Counter of recovered stage panics
//   - pipeline.steps.total: Gauge of stages in the last run
//   - pipeline.steps.completed: Gauge of stages that passed in the last run
//   - pipeline.duration.ms: Gauge of the last run's duration
//   - pipeline.events.dropped.total: Counter of events the hook queue refused
//
// Traces:
//   - pipeline.run: Parent span for the whole run
//   - pipeline.stage: Child span per stage, including skipped ones
//   - pipeline.finish: Child span for the finisher
//
// Events (via hooks):
//   - pipeline.stage_complete: Fired after each stage that ran
//   - pipeline.stage_skipped: Fired for each stage skipped after a failure
//   - pipeline.finished: Fired after the finisher returns
//
// Events are queued for a pool of hook workers. When the queue is full the
// event is dropped and counted; size the queue with SetHookQueue when every
// event of a long run must be delivered.
//
// Example:
//
//	p := railz.NewPipeline("parse-header",
//	    railz.Finish(func(b *Buffer) Header { return b.Header }),
//	    railz.NewStage("magic", checkMagic),
//	    railz.NewStage("version", readVersion),
//	    railz.NewStage("flags", readFlags),
//	)
//	defer p.Close()
//
//	p.OnFinished(func(_ context.Context, e railz.PipelineEvent) error {
//	    if !e.Success {
//	        log.Printf("%s: %d stages skipped", e.Name, e.SkippedStages)
//	    }
//	    return nil
//	})
//
//	header := p.Run(ctx, &Buffer{Raw: raw})
type Pipeline[C, R any] struct {
	name     Name
	finisher Finisher[C, R]
	stages   []Stage[C]
	clock    clockz.Clock
	mu       sync.RWMutex
	metrics  *metricz.Registry
	tracer   *tracez.Tracer
	hooks    *hookz.Hooks[PipelineEvent]
}

// NewPipeline creates a Pipeline with a finisher and optional initial stages.
// More stages can be added later with Register or the modification methods.
// It panics if finisher is the zero Finisher.
func NewPipeline[C, R any](name Name, finisher Finisher[C, R], stages ...Stage[C]) *Pipeline[C, R] {
	if finisher.fn == nil {
		panic(errNilFinisher(name))
	}

	// Initialize observability
	metrics := metricz.New()
	metrics.Counter(PipelineRunsTotal)
	metrics.Counter(PipelineSuccessesTotal)
	metrics.Counter(PipelineFailuresTotal)
	metrics.Counter(PipelineStepsSkippedTotal)
	metrics.Counter(PipelineStepsPanicsTotal)
	metrics.Gauge(PipelineStepsTotal)
	metrics.Gauge(PipelineStepsCompleted)
	metrics.Gauge(PipelineDurationMs)
	metrics.Counter(PipelineEventsDroppedTotal)

	return &Pipeline[C, R]{
		name:     name,
		finisher: finisher,
		stages:   slices.Clone(stages),
		metrics:  metrics,
		tracer:   tracez.New(),
		hooks:    hookz.New[PipelineEvent](),
	}
}

// Run evaluates the pipeline over c and returns the finisher's result.
//
// The context.Context is used for tracing and event delivery only; stages
// and the finisher never see it and a canceled context does not stop a run.
// A run is synchronous and always reaches the finisher.
func (p *Pipeline[C, R]) Run(ctx context.Context, c *C) R {
	p.mu.RLock()
	stages := slices.Clone(p.stages)
	finisher := p.finisher
	clock := p.getClock()
	p.mu.RUnlock()

	// Handle nil context
	if ctx == nil {
		ctx = context.Background()
	}

	p.metrics.Counter(PipelineRunsTotal).Inc()
	p.metrics.Gauge(PipelineStepsTotal).Set(float64(len(stages)))
	start := clock.Now()

	sig := finisher.Signature()
	ctx, span := p.tracer.StartSpan(ctx, PipelineRunSpan)
	span.SetTag(PipelineTagName, p.name)
	span.SetTag(PipelineTagStageCount, strconv.Itoa(len(stages)))
	span.SetTag(PipelineTagContextType, sig.Context)
	span.SetTag(PipelineTagResultType, sig.Result)
	defer span.Finish()

	ch := Start(c)
	completed, skipped := 0, 0
	for i, stage := range stages {
		var outcome Outcome
		ch, outcome = p.runStage(ctx, ch, stage, i+1, len(stages), clock)
		switch outcome {
		case OutcomePassed:
			completed++
		case OutcomeSkipped:
			skipped++
		}
	}
	p.metrics.Gauge(PipelineStepsCompleted).Set(float64(completed))

	result := p.finish(ctx, ch, finisher)

	elapsed := clock.Since(start)
	p.metrics.Gauge(PipelineDurationMs).Set(float64(elapsed.Milliseconds()))
	if ch.good {
		span.SetTag(PipelineTagSuccess, "true")
		p.metrics.Counter(PipelineSuccessesTotal).Inc()
	} else {
		span.SetTag(PipelineTagSuccess, "false")
		p.metrics.Counter(PipelineFailuresTotal).Inc()
	}

	p.emit(ctx, PipelineEventFinished, PipelineEvent{
		Name:            p.name,
		TotalStages:     len(stages),
		Success:         ch.good,
		CompletedStages: completed,
		SkippedStages:   skipped,
		TotalDuration:   elapsed,
		Timestamp:       clock.Now(),
	})

	return result
}

// runStage feeds one stage to the chain and reports what happened to it.
func (p *Pipeline[C, R]) runStage(ctx context.Context, ch Chain[C], stage Stage[C], number, total int, clock clockz.Clock) (Chain[C], Outcome) {
	stageCtx, stageSpan := p.tracer.StartSpan(ctx, PipelineStageSpan)
	stageSpan.SetTag(PipelineTagStageName, stage.name)
	stageSpan.SetTag(PipelineTagStageNumber, strconv.Itoa(number))
	defer stageSpan.Finish()

	if !ch.good {
		stageSpan.SetTag(PipelineTagOutcome, string(OutcomeSkipped))
		p.metrics.Counter(PipelineStepsSkippedTotal).Inc()
		p.emit(stageCtx, PipelineEventStageSkipped, PipelineEvent{
			Name:        p.name,
			StageName:   stage.name,
			StageNumber: number,
			TotalStages: total,
			Outcome:     OutcomeSkipped,
			Timestamp:   clock.Now(),
		})
		// Still routed through Then so the chain alone decides to skip.
		return ch.Then(stage.step), OutcomeSkipped
	}

	var panicked string
	guarded := func(c *C) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				panicked = panicMessage(r)
				ok = false
			}
		}()
		return stage.step(c)
	}

	stageStart := clock.Now()
	ch = ch.Then(guarded)
	stageDuration := clock.Since(stageStart)

	outcome := OutcomePassed
	switch {
	case panicked != "":
		outcome = OutcomePanicked
		p.metrics.Counter(PipelineStepsPanicsTotal).Inc()
		stageSpan.SetTag(PipelineTagPanic, panicked)
	case !ch.good:
		outcome = OutcomeFailed
	}
	stageSpan.SetTag(PipelineTagOutcome, string(outcome))

	p.emit(stageCtx, PipelineEventStageComplete, PipelineEvent{
		Name:        p.name,
		StageName:   stage.name,
		StageNumber: number,
		TotalStages: total,
		Outcome:     outcome,
		Panic:       panicked,
		Duration:    stageDuration,
		Timestamp:   clock.Now(),
	})

	return ch, outcome
}

// emit hands an event to the hook workers. A refused event is counted, not
// retried.
func (p *Pipeline[C, R]) emit(ctx context.Context, key hookz.Key, e PipelineEvent) {
	p.mu.RLock()
	hooks := p.hooks
	p.mu.RUnlock()

	if err := hooks.Emit(ctx, key, e); err != nil {
		p.metrics.Counter(PipelineEventsDroppedTotal).Inc()
	}
}

func (p *Pipeline[C, R]) finish(ctx context.Context, ch Chain[C], finisher Finisher[C, R]) R {
	_, span := p.tracer.StartSpan(ctx, PipelineFinishSpan)
	defer span.Finish()
	return End(ch, finisher)
}

// Register adds stages to the end of the pipeline.
func (p *Pipeline[C, R]) Register(stages ...Stage[C]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stages...)
}

// Len returns the number of stages.
func (p *Pipeline[C, R]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stages)
}

// Clear removes all stages. The finisher is kept.
func (p *Pipeline[C, R]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = p.stages[:0]
}

// Unshift adds stages to the front of the pipeline (runs first).
func (p *Pipeline[C, R]) Unshift(stages ...Stage[C]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = slices.Insert(p.stages, 0, stages...)
}

// Push adds stages to the back of the pipeline (runs last).
func (p *Pipeline[C, R]) Push(stages ...Stage[C]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, stages...)
}

// Shift removes and returns the first stage.
func (p *Pipeline[C, R]) Shift() (Stage[C], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.stages) == 0 {
		return Stage[C]{}, ErrEmptyPipeline
	}

	stage := p.stages[0]
	p.stages = p.stages[1:]
	return stage, nil
}

// Pop removes and returns the last stage.
func (p *Pipeline[C, R]) Pop() (Stage[C], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.stages) == 0 {
		return Stage[C]{}, ErrEmptyPipeline
	}

	last := len(p.stages) - 1
	stage := p.stages[last]
	p.stages = p.stages[:last]
	return stage, nil
}

// Names returns the stage names in order.
func (p *Pipeline[C, R]) Names() []Name {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]Name, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.name
	}
	return names
}

// Remove removes the first stage with the given name.
func (p *Pipeline[C, R]) Remove(name Name) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(name)
	if i < 0 {
		return stageNotFound(name)
	}
	p.stages = slices.Delete(p.stages, i, i+1)
	return nil
}

// Replace replaces the first stage with the given name.
func (p *Pipeline[C, R]) Replace(name Name, stage Stage[C]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(name)
	if i < 0 {
		return stageNotFound(name)
	}
	p.stages[i] = stage
	return nil
}

// After inserts stages after the first stage with the given name.
func (p *Pipeline[C, R]) After(name Name, stages ...Stage[C]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(name)
	if i < 0 {
		return stageNotFound(name)
	}
	p.stages = slices.Insert(p.stages, i+1, stages...)
	return nil
}

// Before inserts stages before the first stage with the given name.
func (p *Pipeline[C, R]) Before(name Name, stages ...Stage[C]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(name)
	if i < 0 {
		return stageNotFound(name)
	}
	p.stages = slices.Insert(p.stages, i, stages...)
	return nil
}

// indexOf must be called with the lock held.
func (p *Pipeline[C, R]) indexOf(name Name) int {
	return slices.IndexFunc(p.stages, func(s Stage[C]) bool {
		return s.name == name
	})
}

// SetFinisher swaps the finisher used by later runs. Like NewPipeline, it
// panics if finisher is the zero Finisher.
func (p *Pipeline[C, R]) SetFinisher(finisher Finisher[C, R]) *Pipeline[C, R] {
	if finisher.fn == nil {
		panic(errNilFinisher(p.name))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finisher = finisher
	return p
}

// Name returns the name of this pipeline.
func (p *Pipeline[C, R]) Name() Name {
	return p.name
}

// Signature describes the pipeline's context and result types.
func (*Pipeline[C, R]) Signature() Signature {
	return SignatureOf[C, R]()
}

// WithClock sets a custom clock for testing.
func (p *Pipeline[C, R]) WithClock(clock clockz.Clock) *Pipeline[C, R] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

// getClock must be called with the lock held.
func (p *Pipeline[C, R]) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline[C, R]) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pipeline.
func (p *Pipeline[C, R]) Tracer() *tracez.Tracer {
	return p.tracer
}

// SetHookQueue sizes the queue that buffers events for hook handlers. A run
// emits one event per stage plus one when it finishes, so Len()+1 holds a
// whole run. Zero restores the default. The queue can only be resized
// before the first handler is registered.
func (p *Pipeline[C, R]) SetHookQueue(size int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hooks.Metrics().RegisteredHooks > 0 {
		return ErrHooksRegistered
	}
	if size < 0 {
		size = 0
	}
	_ = p.hooks.Close()
	p.hooks = hookz.New[PipelineEvent](hookz.WithQueueSize(size))
	return nil
}

// Close gracefully shuts down observability components.
func (p *Pipeline[C, R]) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.getHooks().Close()
	return nil
}

func (p *Pipeline[C, R]) getHooks() *hookz.Hooks[PipelineEvent] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hooks
}

// OnStageComplete registers a handler called asynchronously after each stage
// that ran, whatever its outcome.
func (p *Pipeline[C, R]) OnStageComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.getHooks().Hook(PipelineEventStageComplete, handler)
	return err
}

// OnStageSkipped registers a handler called asynchronously for each stage
// skipped because an earlier stage failed.
func (p *Pipeline[C, R]) OnStageSkipped(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.getHooks().Hook(PipelineEventStageSkipped, handler)
	return err
}

// OnFinished registers a handler called asynchronously after the finisher
// returns. The event carries the run's aggregate outcome.
func (p *Pipeline[C, R]) OnFinished(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.getHooks().Hook(PipelineEventFinished, handler)
	return err
}
