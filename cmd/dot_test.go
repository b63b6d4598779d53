package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const accumulatorDOT = `digraph accumulate {
	add5   [op="add", arg="5"];
	gate   [op="le",  arg="3"];
	add100 [op="add", arg="100"];
	result [op="finish", arg="1"];
	add5 -> gate -> add100 -> result;
}`

func TestParseDefinition(t *testing.T) {
	t.Run("Linear Chain", func(t *testing.T) {
		def, err := parseDefinition(accumulatorDOT)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if def.Name != "accumulate" {
			t.Errorf("expected name accumulate, got %s", def.Name)
		}
		expected := []Node{
			{ID: "add5", Op: OpAdd, Arg: 5},
			{ID: "gate", Op: OpLe, Arg: 3},
			{ID: "add100", Op: OpAdd, Arg: 100},
		}
		if len(def.Stages) != len(expected) {
			t.Fatalf("expected %d stages, got %d", len(expected), len(def.Stages))
		}
		for i, n := range expected {
			if def.Stages[i] != n {
				t.Errorf("stage %d: expected %+v, got %+v", i, n, def.Stages[i])
			}
		}
		if def.Finish != (Node{ID: "result", Op: OpFinish, Arg: 1}) {
			t.Errorf("unexpected finisher %+v", def.Finish)
		}
	})

	t.Run("Edge Order Wins Over Declaration Order", func(t *testing.T) {
		def, err := parseDefinition(`digraph g {
			done [op=finish];
			b [op=mul, arg=3];
			a [op=add, arg=2];
			a -> b;
			b -> done;
		}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if def.Stages[0].ID != "a" || def.Stages[1].ID != "b" {
			t.Errorf("expected a then b, got %s then %s", def.Stages[0].ID, def.Stages[1].ID)
		}
		if def.Finish.Arg != 1 {
			t.Errorf("expected default finish arg 1, got %d", def.Finish.Arg)
		}
	})

	t.Run("Finish Only", func(t *testing.T) {
		def, err := parseDefinition(`digraph empty { double [op=finish, arg=2]; }`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(def.Stages) != 0 {
			t.Errorf("expected no stages, got %d", len(def.Stages))
		}
	})

	t.Run("Fail Needs No Arg", func(t *testing.T) {
		def, err := parseDefinition(`digraph g { stop [op=fail]; out [op=finish]; stop -> out; }`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if def.Stages[0].Op != OpFail {
			t.Errorf("expected fail, got %s", def.Stages[0].Op)
		}
	})

	errorCases := []struct {
		name string
		src  string
		want string
	}{
		{"Syntax Error", `digraph {`, "dot parse error"},
		{"Empty Graph", `digraph g {}`, "no nodes"},
		{"Missing Op", `digraph g { a; out [op=finish]; a -> out; }`, `node "a" has no op`},
		{"Unknown Op", `digraph g { a [op=pow, arg=2]; out [op=finish]; a -> out; }`, "unknown op"},
		{"Missing Arg", `digraph g { a [op=add]; out [op=finish]; a -> out; }`, "needs an arg"},
		{"Bad Arg", `digraph g { a [op=add, arg=five]; out [op=finish]; a -> out; }`, "invalid arg"},
		{"No Finisher", `digraph g { a [op=add, arg=1]; }`, "must have op=finish"},
		{"Finisher Not Last", `digraph g { out [op=finish]; a [op=add, arg=1]; out -> a; }`, "must be last"},
		{"Branch", `digraph g { a [op=add, arg=1]; b [op=add, arg=1]; out [op=finish]; a -> b; a -> out; }`, "more than one outgoing"},
		{"Join", `digraph g { a [op=add, arg=1]; b [op=add, arg=1]; out [op=finish]; a -> out; b -> out; }`, "more than one incoming"},
		{"Two Starts", `digraph g { a [op=add, arg=1]; out [op=finish]; }`, "exactly one start node"},
		{"Cycle", `digraph g { s [op=add, arg=1]; a [op=add, arg=1]; b [op=add, arg=1]; s -> a; a -> b; b -> a; }`, "more than one incoming"},
		{"Self Loop", `digraph g { a [op=add, arg=1]; a -> a; }`, "edge to itself"},
		{"Detached Loop", `digraph g { s [op=finish]; a [op=add, arg=1]; b [op=add, arg=1]; a -> b; b -> a; }`, "not on the path"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseDefinition(tc.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	t.Run("No Finisher Is Wrapped", func(t *testing.T) {
		_, err := parseDefinition(`digraph g { a [op=add, arg=1]; }`)
		if !errors.Is(err, errNoFinisher) {
			t.Errorf("expected errNoFinisher, got %v", err)
		}
	})
}

func TestDefinitionBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("Accumulator Stops At Failed Check", func(t *testing.T) {
		def, err := parseDefinition(accumulatorDOT)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, err := def.Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		acc := 0
		if got := p.Run(ctx, &acc); got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
		if names := p.Names(); len(names) != 3 || names[2] != "add100" {
			t.Errorf("unexpected stage names %v", names)
		}
	})

	t.Run("Initial Value Can Pass The Check", func(t *testing.T) {
		def, err := parseDefinition(`digraph g {
			sub [op=sub, arg=10];
			gate [op=le, arg=3];
			add [op=add, arg=100];
			out [op=finish, arg=2];
			sub -> gate -> add -> out;
		}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, err := def.Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		acc := 12
		if got := p.Run(ctx, &acc); got != 204 {
			t.Errorf("expected (12-10+100)*2 = 204, got %d", got)
		}
	})

	t.Run("Every Op", func(t *testing.T) {
		cases := []struct {
			op   Op
			arg  int
			acc  int
			pass bool
			want int
		}{
			{OpAdd, 2, 3, true, 5},
			{OpSub, 2, 3, true, 1},
			{OpMul, 2, 3, true, 6},
			{OpGt, 2, 3, true, 3},
			{OpGt, 3, 3, false, 3},
			{OpGe, 3, 3, true, 3},
			{OpLt, 3, 3, false, 3},
			{OpLt, 4, 3, true, 3},
			{OpLe, 3, 3, true, 3},
			{OpEq, 3, 3, true, 3},
			{OpEq, 4, 3, false, 3},
			{OpNe, 4, 3, true, 3},
			{OpFail, 0, 3, false, 3},
		}
		for _, tc := range cases {
			step, err := Node{ID: "n", Op: tc.op, Arg: tc.arg}.Step()
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.op, err)
			}
			acc := tc.acc
			if got := step(&acc); got != tc.pass {
				t.Errorf("%s %d on %d: expected pass=%v, got %v", tc.op, tc.arg, tc.acc, tc.pass, got)
			}
			if acc != tc.want {
				t.Errorf("%s %d on %d: expected %d, got %d", tc.op, tc.arg, tc.acc, tc.want, acc)
			}
		}
	})

	t.Run("Label Only Node Cannot Build", func(t *testing.T) {
		def := &Definition{
			Name:   "labels",
			Stages: []Node{{ID: "x", Label: "describe only"}},
			Finish: Node{ID: "out", Op: OpFinish, Arg: 1},
		}
		if _, err := def.Build(); err == nil {
			t.Error("expected error for node without op")
		}
	})

	t.Run("Missing Finisher", func(t *testing.T) {
		def := &Definition{Name: "x"}
		if _, err := def.Build(); !errors.Is(err, errNoFinisher) {
			t.Errorf("expected errNoFinisher, got %v", err)
		}
	})
}

func TestRenderDefinition(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		original := (&AccumulatorScenario{}).Graph()
		dot, err := renderDefinition(original)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(dot, "digraph") {
			t.Errorf("expected a digraph, got %s", dot)
		}

		parsed, err := parseDefinition(dot)
		if err != nil {
			t.Fatalf("rendered DOT did not parse: %v\n%s", err, dot)
		}
		if parsed.Name != original.Name {
			t.Errorf("expected name %s, got %s", original.Name, parsed.Name)
		}
		if len(parsed.Stages) != len(original.Stages) {
			t.Fatalf("expected %d stages, got %d", len(original.Stages), len(parsed.Stages))
		}
		for i := range original.Stages {
			if parsed.Stages[i] != original.Stages[i] {
				t.Errorf("stage %d: expected %+v, got %+v", i, original.Stages[i], parsed.Stages[i])
			}
		}
		if parsed.Finish != original.Finish {
			t.Errorf("expected finisher %+v, got %+v", original.Finish, parsed.Finish)
		}
	})

	t.Run("Label Only Scenarios Render", func(t *testing.T) {
		for _, sc := range []Scenario{&RequestScenario{}, &ParseScenario{}} {
			dot, err := renderDefinition(sc.Graph())
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", sc.Name(), err)
			}
			for _, n := range sc.Graph().Stages {
				if !strings.Contains(dot, n.Label) {
					t.Errorf("%s: expected label %q in output", sc.Name(), n.Label)
				}
			}
		}
	})
}
