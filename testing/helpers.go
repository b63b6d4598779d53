// Package testing provides test utilities and helpers for railz-based code.
//
// This package includes mock steps and finishers, assertion helpers, and a
// chaos step for exercising failure paths.
//
// Example usage:
//
//	func TestCheckout(t *testing.T) {
//		price := rtesting.NewMockStep[Order](t, "price").WithResult(false)
//		charge := rtesting.NewMockStep[Order](t, "charge")
//		done := rtesting.NewMockFinisher[Order, bool](t, "done")
//
//		order := Order{}
//		railz.End(railz.Start(&order).Then(price.Step()).Then(charge.Step()), done.Finisher())
//
//		rtesting.AssertCalled(t, price, 1)
//		rtesting.AssertNotCalled(t, charge)
//		rtesting.AssertFinished(t, done, 1)
//	}
package testing

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/railz"
)

// MockStep provides a configurable step that records its calls.
type MockStep[C any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t         *testing.T
	name      string
	callCount int64
	lastInput C
	result    bool
	mutate    func(*C)
	panicMsg  string
	mu        sync.RWMutex
	history   []C
}

// NewMockStep creates a mock step that passes by default.
func NewMockStep[C any](t *testing.T, name string) *MockStep[C] {
	return &MockStep[C]{
		t:      t,
		name:   name,
		result: true,
	}
}

// WithResult configures the verdict the step returns.
func (m *MockStep[C]) WithResult(ok bool) *MockStep[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = ok
	return m
}

// WithMutation configures a mutation applied to the context on each call,
// before the verdict is returned.
func (m *MockStep[C]) WithMutation(fn func(*C)) *MockStep[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutate = fn
	return m
}

// WithPanic configures the step to panic with a specific message.
func (m *MockStep[C]) WithPanic(msg string) *MockStep[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// Name returns the name of the mock step.
func (m *MockStep[C]) Name() railz.Name {
	return m.name
}

// Step returns the mock as a railz.Step.
func (m *MockStep[C]) Step() railz.Step[C] {
	return m.call
}

// Stage returns the mock as a named railz.Stage.
func (m *MockStep[C]) Stage() railz.Stage[C] {
	return railz.NewStage(m.name, m.call)
}

func (m *MockStep[C]) call(c *C) bool {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	m.lastInput = *c
	m.history = append(m.history, *c)
	mutate := m.mutate
	result := m.result
	panicMsg := m.panicMsg
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if mutate != nil {
		mutate(c)
	}
	return result
}

// CallCount returns the number of times the step has been invoked.
func (m *MockStep[C]) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastInput returns a copy of the context as the most recent call saw it,
// before the configured mutation.
func (m *MockStep[C]) LastInput() C {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastInput
}

// History returns a copy of the context at every call, oldest first.
func (m *MockStep[C]) History() []C {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := make([]C, len(m.history))
	copy(history, m.history)
	return history
}

// Reset clears all call tracking.
func (m *MockStep[C]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	atomic.StoreInt64(&m.callCount, 0)
	m.lastInput = *new(C)
	m.history = nil
}

// MockFinisher provides a finisher that records its calls.
type MockFinisher[C, R any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t         *testing.T
	name      string
	callCount int64
	lastInput C
	returnVal R
	fn        func(*C) R
	mu        sync.RWMutex
}

// NewMockFinisher creates a mock finisher that returns the zero R by default.
func NewMockFinisher[C, R any](t *testing.T, name string) *MockFinisher[C, R] {
	return &MockFinisher[C, R]{t: t, name: name}
}

// WithReturn configures a fixed result.
func (m *MockFinisher[C, R]) WithReturn(val R) *MockFinisher[C, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.fn = nil
	return m
}

// WithFunc configures the result to be computed from the context.
func (m *MockFinisher[C, R]) WithFunc(fn func(*C) R) *MockFinisher[C, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Finisher returns the mock as a railz.Finisher.
func (m *MockFinisher[C, R]) Finisher() railz.Finisher[C, R] {
	return railz.Finish(m.call)
}

func (m *MockFinisher[C, R]) call(c *C) R {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	m.lastInput = *c
	fn := m.fn
	val := m.returnVal
	m.mu.Unlock()

	if fn != nil {
		return fn(c)
	}
	return val
}

// CallCount returns the number of times the finisher has run.
func (m *MockFinisher[C, R]) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastInput returns a copy of the context the most recent call saw.
func (m *MockFinisher[C, R]) LastInput() C {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastInput
}

// Assertion Helpers

// AssertCalled verifies that a mock step was invoked exactly n times.
func AssertCalled[C any](t *testing.T, mock *MockStep[C], expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock step %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// AssertNotCalled verifies that a mock step was never invoked.
func AssertNotCalled[C any](t *testing.T, mock *MockStep[C]) {
	t.Helper()
	AssertCalled(t, mock, 0)
}

// AssertCalledWith verifies the context the mock step last saw.
func AssertCalledWith[C comparable](t *testing.T, mock *MockStep[C], expectedInput C) {
	t.Helper()
	if mock.CallCount() == 0 {
		t.Errorf("expected mock step %s to be called with %v, but it was never called",
			mock.name, expectedInput)
		return
	}

	actualInput := mock.LastInput()
	if actualInput != expectedInput {
		t.Errorf("expected mock step %s to be called with %v, but was called with %v",
			mock.name, expectedInput, actualInput)
	}
}

// AssertFinished verifies that a mock finisher ran exactly n times.
func AssertFinished[C, R any](t *testing.T, mock *MockFinisher[C, R], expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock finisher %s to run %d times, but ran %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// ChaosStep wraps another step and randomly fails or panics instead of
// calling it. It is deterministic for a fixed seed.
type ChaosStep[C any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	name        string
	wrapped     railz.Step[C]
	failureRate float64
	panicRate   float64
	rng         *mathrand.Rand
	mu          sync.Mutex
	totalCalls  int64
	failedCalls int64
	panicCalls  int64
}

// ChaosConfig holds configuration for chaos testing.
type ChaosConfig struct {
	FailureRate float64 // Probability of failing without calling the wrapped step (0.0 to 1.0)
	PanicRate   float64 // Probability of panicking (0.0 to 1.0)
	Seed        int64   // Random seed for reproducible chaos (0 for random seed)
}

// NewChaosStep creates a chaos step that wraps another step.
func NewChaosStep[C any](name string, wrapped railz.Step[C], config ChaosConfig) *ChaosStep[C] {
	seed := config.Seed
	if seed == 0 {
		var seedBytes [8]byte
		if _, err := rand.Read(seedBytes[:]); err != nil {
			seed = time.Now().UnixNano()
		} else {
			for _, b := range seedBytes {
				seed = seed<<8 | int64(b)
			}
		}
	}

	return &ChaosStep[C]{
		name:        name,
		wrapped:     wrapped,
		failureRate: config.FailureRate,
		panicRate:   config.PanicRate,
		rng:         mathrand.New(mathrand.NewSource(seed)), //nolint:gosec // G404: Test utility uses weak RNG for deterministic chaos scenarios
	}
}

// Name returns the name of the chaos step.
func (c *ChaosStep[C]) Name() railz.Name {
	return c.name
}

// Stage returns the chaos step as a named railz.Stage.
func (c *ChaosStep[C]) Stage() railz.Stage[C] {
	return railz.NewStage(c.name, c.Step())
}

// Step returns the chaos step as a railz.Step.
func (c *ChaosStep[C]) Step() railz.Step[C] {
	return func(ctx *C) bool {
		c.mu.Lock()
		c.totalCalls++
		roll := c.rng.Float64()
		var panicking, failing bool
		switch {
		case roll < c.panicRate:
			c.panicCalls++
			panicking = true
		case roll < c.panicRate+c.failureRate:
			c.failedCalls++
			failing = true
		}
		c.mu.Unlock()

		if panicking {
			panic(fmt.Sprintf("chaos step %s panic", c.name))
		}
		if failing {
			return false
		}
		return c.wrapped(ctx)
	}
}

// ChaosStats reports how often a chaos step interfered.
type ChaosStats struct {
	TotalCalls  int64
	FailedCalls int64
	PanicCalls  int64
}

// Stats returns the chaos step's counters.
func (c *ChaosStep[C]) Stats() ChaosStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChaosStats{
		TotalCalls:  c.totalCalls,
		FailedCalls: c.failedCalls,
		PanicCalls:  c.panicCalls,
	}
}

// FailureRate returns the observed failure rate.
func (s ChaosStats) FailureRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.FailedCalls) / float64(s.TotalCalls)
}

// String renders the stats for test logs.
func (s ChaosStats) String() string {
	return fmt.Sprintf("calls=%d failed=%d panics=%d (%.1f%% failure)",
		s.TotalCalls, s.FailedCalls, s.PanicCalls, s.FailureRate()*100)
}

// ParallelTest runs testFunc concurrently in the given number of goroutines
// and waits for all of them.
func ParallelTest(t *testing.T, goroutines int, testFunc func(int)) {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			testFunc(id)
		}(i)
	}
	wg.Wait()
}
