package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/zoobzio/railz"
)

// env is what a scenario needs from the command that runs it.
type env struct {
	out     io.Writer
	logger  *slog.Logger
	verbose bool
}

// Scenario defines the interface that all built-in scenarios must implement
type Scenario interface {
	Name() string
	Description() string
	// Graph describes the scenario's chain for rendering.
	Graph() *Definition
	Run(ctx context.Context, e *env) error
}

// getAllScenarios returns all registered scenarios in a consistent order
func getAllScenarios() []Scenario {
	return []Scenario{
		&AccumulatorScenario{},
		&EmptyScenario{},
		&RequestScenario{},
		&ParseScenario{},
	}
}

// getScenarioByName returns a specific scenario by name
func getScenarioByName(name string) (Scenario, bool) {
	for _, sc := range getAllScenarios() {
		if sc.Name() == name {
			return sc, true
		}
	}
	return nil, false
}

// watch subscribes a stage logger to p when the run is verbose. A nil
// stageLog makes runLogged a plain Run.
func watch[C, R any](e *env, p *railz.Pipeline[C, R]) (*stageLog, error) {
	if !e.verbose {
		return nil, nil
	}
	return observe(p, e.logger)
}
