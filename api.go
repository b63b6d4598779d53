package railz

// Name is a type alias for stage and pipeline names.
// Using this type encourages storing names as constants rather than
// using inline strings throughout your code.
//
// Example:
//
//	const (
//	    ParseHeaderName  railz.Name = "parse-header"
//	    CheckLengthName  railz.Name = "check-length"
//	)
type Name = string

// Stage is a named Step. Names appear in pipeline spans, metrics and events,
// and are how a Pipeline finds stages to remove, replace or insert around.
//
// Stage is a value: copying it is cheap and two copies behave identically.
type Stage[C any] struct {
	step Step[C]
	name Name
}

// NewStage names step.
func NewStage[C any](name Name, step Step[C]) Stage[C] {
	return Stage[C]{name: name, step: step}
}

// Name returns the stage name.
func (s Stage[C]) Name() Name {
	return s.name
}

// Run invokes the stage's step directly, outside any chain.
func (s Stage[C]) Run(c *C) bool {
	return s.step(c)
}

// Step returns the underlying step so a stage can be passed to Chain.Then.
func (s Stage[C]) Step() Step[C] {
	return s.step
}
