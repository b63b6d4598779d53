package railz

import (
	"errors"
	"strconv"
	"testing"
)

type parseBuffer struct {
	Raw   string
	Value int
	Err   error
	Notes []string
}

func TestTransform(t *testing.T) {
	t.Run("Always Passes", func(t *testing.T) {
		n := 3
		step := Transform(func(n *int) { *n *= 3 })
		if !step(&n) {
			t.Error("transform should always pass")
		}
		if n != 9 {
			t.Errorf("expected 9, got %d", n)
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("Verdict From Predicate", func(t *testing.T) {
		positive := Check(func(n int) bool { return n > 0 })
		one, zero := 1, 0
		if !positive(&one) {
			t.Error("expected 1 to pass")
		}
		if positive(&zero) {
			t.Error("expected 0 to fail")
		}
	})

	t.Run("Cannot Mutate", func(t *testing.T) {
		data := TestData{Value: 1}
		step := Check(func(d TestData) bool {
			d.Value = 99
			return true
		})
		step(&data)
		if data.Value != 1 {
			t.Errorf("check should not modify the context, got %d", data.Value)
		}
	})
}

func TestApply(t *testing.T) {
	parse := Apply(
		func(b *parseBuffer) error {
			n, err := strconv.Atoi(b.Raw)
			if err != nil {
				return err
			}
			b.Value = n
			return nil
		},
		func(b *parseBuffer, err error) { b.Err = err },
	)

	t.Run("Success", func(t *testing.T) {
		b := parseBuffer{Raw: "42"}
		if !parse(&b) {
			t.Fatal("expected parse to pass")
		}
		if b.Value != 42 {
			t.Errorf("expected 42, got %d", b.Value)
		}
		if b.Err != nil {
			t.Errorf("unexpected error recorded: %v", b.Err)
		}
	})

	t.Run("Failure Recorded In Context", func(t *testing.T) {
		b := parseBuffer{Raw: "forty-two"}
		if parse(&b) {
			t.Fatal("expected parse to fail")
		}
		var numErr *strconv.NumError
		if !errors.As(b.Err, &numErr) {
			t.Errorf("expected *strconv.NumError recorded, got %v", b.Err)
		}
	})

	t.Run("Nil Recorder", func(t *testing.T) {
		step := Apply(func(*parseBuffer) error { return errors.New("boom") }, nil)
		b := parseBuffer{}
		if step(&b) {
			t.Error("expected failure")
		}
	})

	t.Run("Finisher Reads Recorded Error", func(t *testing.T) {
		b := parseBuffer{Raw: "x"}
		report := End(
			Start(&b).Then(parse).Then(Transform(func(b *parseBuffer) { b.Value++ })),
			Finish(func(b *parseBuffer) string {
				if b.Err != nil {
					return "error: " + b.Err.Error()
				}
				return strconv.Itoa(b.Value)
			}),
		)
		if report != `error: strconv.Atoi: parsing "x": invalid syntax` {
			t.Errorf("unexpected report %q", report)
		}
	})
}

func TestEffect(t *testing.T) {
	t.Run("Pass", func(t *testing.T) {
		var seen int
		step := Effect(func(d TestData) error {
			seen = d.Value
			return nil
		})
		data := TestData{Value: 5}
		if !step(&data) {
			t.Error("expected effect to pass")
		}
		if seen != 5 {
			t.Errorf("expected effect to see 5, got %d", seen)
		}
	})

	t.Run("Fail", func(t *testing.T) {
		step := Effect(func(TestData) error { return errors.New("denied") })
		data := TestData{}
		if step(&data) {
			t.Error("expected effect to fail")
		}
	})

	t.Run("Does Not Modify", func(t *testing.T) {
		step := Effect(func(d TestData) error {
			d.Value = 100
			return nil
		})
		data := TestData{Value: 1}
		step(&data)
		if data.Value != 1 {
			t.Errorf("effect should not modify data, got %d", data.Value)
		}
	})
}

func TestMutate(t *testing.T) {
	double := Mutate(
		func(n *int) { *n *= 2 },
		func(n int) bool { return n > 10 },
	)

	t.Run("Condition Met", func(t *testing.T) {
		n := 20
		if !double(&n) {
			t.Error("mutate should always pass")
		}
		if n != 40 {
			t.Errorf("expected 40, got %d", n)
		}
	})

	t.Run("Condition Not Met", func(t *testing.T) {
		n := 5
		if !double(&n) {
			t.Error("mutate should always pass")
		}
		if n != 5 {
			t.Errorf("expected 5, got %d", n)
		}
	})
}

func TestEnrich(t *testing.T) {
	t.Run("Failure Does Not Fail Chain", func(t *testing.T) {
		b := parseBuffer{}
		result := End(
			Start(&b).
				Then(Enrich(func(b *parseBuffer) error {
					b.Notes = append(b.Notes, "partial")
					return errors.New("lookup unavailable")
				})).
				Then(Transform(func(b *parseBuffer) { b.Notes = append(b.Notes, "after") })),
			Finish(func(b *parseBuffer) []string { return b.Notes }),
		)
		if len(result) != 2 || result[0] != "partial" || result[1] != "after" {
			t.Errorf("expected [partial after], got %v", result)
		}
	})
}

func TestNot(t *testing.T) {
	t.Run("Inverts Verdict Keeps Mutation", func(t *testing.T) {
		n := 1
		step := Not(func(n *int) bool {
			*n = 2
			return true
		})
		if step(&n) {
			t.Error("expected inverted verdict")
		}
		if n != 2 {
			t.Errorf("expected mutation to stand, got %d", n)
		}
	})
}
