package railz

import (
	"errors"
	"fmt"
)

// Pipeline modification errors.
var (
	ErrEmptyPipeline = errors.New("pipeline is empty")
	ErrStageNotFound = errors.New("stage not found")
)

// ErrHooksRegistered is returned when the hook queue is resized after a
// handler was registered.
var ErrHooksRegistered = errors.New("pipeline hooks already registered")

// errNilFinisher is the panic value for a pipeline given the zero Finisher.
func errNilFinisher(name Name) error {
	return fmt.Errorf("pipeline %q: finisher has no function", name)
}

// stageNotFound wraps ErrStageNotFound with the name that was looked up.
func stageNotFound(name Name) error {
	return fmt.Errorf("stage %q: %w", name, ErrStageNotFound)
}

// panicMessage renders a recovered panic value for span tags and events.
func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
