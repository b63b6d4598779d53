package railz

import (
	"strconv"
	"testing"
)

type ledger struct {
	entries []int
	label   string
}

func (l *ledger) Total() int {
	sum := 0
	for _, e := range l.entries {
		sum += e
	}
	return sum
}

func (l ledger) Count() int {
	return len(l.entries)
}

type summary struct {
	prefix string
}

func (s summary) Finish(l *ledger) string {
	return s.prefix + strconv.Itoa(l.Total())
}

func total(l *ledger) int {
	return l.Total()
}

func record(n int) Step[ledger] {
	return func(l *ledger) bool {
		l.entries = append(l.entries, n)
		return true
	}
}

func TestFinish(t *testing.T) {
	t.Run("Closure", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(2)).Then(record(3)), Finish(func(l *ledger) int { return l.Total() }))
		if got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
	})

	t.Run("Plain Function", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(4)), Finish(total))
		if got != 4 {
			t.Errorf("expected 4, got %d", got)
		}
	})

	t.Run("Method Expression", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(1)).Then(record(1)), Finish((*ledger).Total))
		if got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})

	t.Run("Method Value Bound Ahead Of Time", func(t *testing.T) {
		other := ledger{entries: []int{10, 20}}
		l := ledger{}
		// The finisher ignores the chain's context and reports on a bound object.
		bound := other.Total
		got := End(Start(&l).Then(record(1)), Finish(func(*ledger) int { return bound() }))
		if got != 30 {
			t.Errorf("expected 30, got %d", got)
		}
	})

	t.Run("By Value", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(1)).Then(record(1)).Then(record(1)), FinishValue(ledger.Count))
		if got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})

	t.Run("Function Object", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(7)), FinishWith[ledger, string](summary{prefix: "total="}))
		if got != "total=7" {
			t.Errorf("expected total=7, got %s", got)
		}
	})

	t.Run("Function Object Method Value", func(t *testing.T) {
		l := ledger{}
		got := End(Start(&l).Then(record(8)), Finish(summary{prefix: "sum:"}.Finish))
		if got != "sum:8" {
			t.Errorf("expected sum:8, got %s", got)
		}
	})

	t.Run("By Value And By Pointer Share A Type", func(t *testing.T) {
		finishers := []Finisher[ledger, int]{
			Finish((*ledger).Total),
			FinishValue(ledger.Count),
		}
		l := ledger{entries: []int{3, 3}}
		if got := finishers[0].From(Start(&l)); got != 6 {
			t.Errorf("expected 6, got %d", got)
		}
		if got := finishers[1].From(Start(&l)); got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})

	t.Run("From Matches End", func(t *testing.T) {
		l := ledger{label: "x"}
		f := Finish(func(l *ledger) string { return l.label })
		ch := Start(&l).Then(func(*ledger) bool { return false })
		if f.From(ch) != End(ch, f) {
			t.Error("From and End should agree")
		}
	})

	t.Run("Finisher Sees Mutations Up To Failure", func(t *testing.T) {
		l := ledger{}
		got := End(
			Start(&l).
				Then(record(1)).
				Then(func(l *ledger) bool {
					l.entries = append(l.entries, 2)
					return false
				}).
				Then(record(100)),
			Finish((*ledger).Total),
		)
		if got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})
}

func TestSignature(t *testing.T) {
	t.Run("Finisher Signature", func(t *testing.T) {
		sig := Finish((*ledger).Total).Signature()
		if sig.Context != "railz.ledger" {
			t.Errorf("expected context railz.ledger, got %s", sig.Context)
		}
		if sig.Result != "int" {
			t.Errorf("expected result int, got %s", sig.Result)
		}
		if sig.String() != "func(*railz.ledger) int" {
			t.Errorf("unexpected signature string %s", sig.String())
		}
	})

	t.Run("Value Form Strips Qualification", func(t *testing.T) {
		byValue := FinishValue(ledger.Count).Signature()
		byPointer := Finish((*ledger).Total).Signature()
		if byValue != byPointer {
			t.Errorf("expected identical signatures, got %v and %v", byValue, byPointer)
		}
	})

	t.Run("Interface Types", func(t *testing.T) {
		sig := SignatureOf[error, any]()
		if sig.Context != "error" {
			t.Errorf("expected error, got %s", sig.Context)
		}
		if sig.Result != "interface {}" {
			t.Errorf("expected interface {}, got %s", sig.Result)
		}
	})

	t.Run("Cached", func(t *testing.T) {
		first := typeName[ledger]()
		second := typeName[ledger]()
		if first != second {
			t.Errorf("expected cached name, got %s and %s", first, second)
		}
	})
}
