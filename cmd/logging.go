package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/zoobzio/railz"
)

// newLogger creates a slog.Logger writing to w in the configured format.
// Verbose mode lowers the level to debug so every stage is reported.
func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// stageLog writes a pipeline's events to a logger. Hook delivery is
// asynchronous, so runLogged waits for the events of its run before
// returning.
type stageLog struct {
	logger *slog.Logger
	clock  clockz.Clock
	mu     sync.Mutex
	logged int
	signal chan struct{}
}

// observe sizes p's hook queue for a whole run and subscribes a stageLog to
// its hooks.
func observe[C, R any](p *railz.Pipeline[C, R], logger *slog.Logger) (*stageLog, error) {
	if err := p.SetHookQueue(p.Len() + 1); err != nil {
		return nil, err
	}
	sl := &stageLog{
		logger: logger,
		clock:  clockz.RealClock,
		signal: make(chan struct{}, 1),
	}
	if err := p.OnStageComplete(sl.stage); err != nil {
		return nil, err
	}
	if err := p.OnStageSkipped(sl.stage); err != nil {
		return nil, err
	}
	if err := p.OnFinished(sl.finished); err != nil {
		return nil, err
	}
	return sl, nil
}

func (sl *stageLog) stage(ctx context.Context, e railz.PipelineEvent) error {
	defer sl.done()

	level := slog.LevelDebug
	if e.Outcome == railz.OutcomeFailed || e.Outcome == railz.OutcomePanicked {
		level = slog.LevelWarn
	}
	attrs := []any{
		"pipeline", e.Name,
		"stage", e.StageName,
		"number", e.StageNumber,
		"of", e.TotalStages,
		"outcome", string(e.Outcome),
		"duration", e.Duration,
	}
	if e.Panic != "" {
		attrs = append(attrs, "panic", e.Panic)
	}
	sl.logger.Log(ctx, level, "stage", attrs...)
	return nil
}

func (sl *stageLog) finished(ctx context.Context, e railz.PipelineEvent) error {
	defer sl.done()

	sl.logger.LogAttrs(ctx, slog.LevelInfo, "finished",
		slog.String("pipeline", e.Name),
		slog.Bool("success", e.Success),
		slog.Int("completed", e.CompletedStages),
		slog.Int("skipped", e.SkippedStages),
		slog.Duration("duration", e.TotalDuration),
	)
	return nil
}

func (sl *stageLog) done() {
	sl.mu.Lock()
	sl.logged++
	sl.mu.Unlock()
	select {
	case sl.signal <- struct{}{}:
	default:
	}
}

func (sl *stageLog) count() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.logged
}

// wait blocks until want events have been logged in total or the timeout
// passes.
func (sl *stageLog) wait(want int, timeout time.Duration) bool {
	deadline := sl.clock.After(timeout)
	for sl.count() < want {
		select {
		case <-sl.signal:
		case <-deadline:
			sl.logger.Warn("timed out waiting for pipeline events",
				"timeout", timeout, "logged", sl.count(), "want", want)
			return false
		}
	}
	return true
}

// runLogged runs p and, when sl is set, waits for the run's events to be
// logged. A run emits one event per stage and one when it finishes, less
// any the hook queue refused.
func runLogged[C, R any](ctx context.Context, sl *stageLog, p *railz.Pipeline[C, R], c *C) R {
	if sl == nil {
		return p.Run(ctx, c)
	}
	m := p.Metrics()
	before := sl.count()
	dropped := m.Counter(railz.PipelineEventsDroppedTotal).Value()

	result := p.Run(ctx, c)

	emitted := int(m.Gauge(railz.PipelineStepsTotal).Value()) + 1
	emitted -= int(m.Counter(railz.PipelineEventsDroppedTotal).Value() - dropped)
	sl.wait(before+emitted, time.Second)
	return result
}
