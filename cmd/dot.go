package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/zoobzio/railz"
)

// Op is the operation a DOT node performs on the accumulator.
type Op string

// Accumulator operations. Arithmetic ops always pass; comparisons pass when
// "acc <op> arg" holds; fail never passes. finish marks the finisher, which
// returns acc * arg.
const (
	OpAdd    Op = "add"
	OpSub    Op = "sub"
	OpMul    Op = "mul"
	OpGt     Op = "gt"
	OpGe     Op = "ge"
	OpLt     Op = "lt"
	OpLe     Op = "le"
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpFail   Op = "fail"
	OpFinish Op = "finish"
)

// DOT attribute names.
const (
	attrOp  = "op"
	attrArg = "arg"
)

var (
	errEmptyGraph = errors.New("pipeline graph has no nodes")
	errNoFinisher = errors.New("pipeline graph has no finish node")
)

// Node is one element of a chain definition. Nodes without an op only
// describe a stage for rendering and cannot be built.
type Node struct {
	ID    string
	Op    Op
	Arg   int
	Label string
}

// Definition is a linear chain: stages in order, then the finisher.
type Definition struct {
	Name   string
	Stages []Node
	Finish Node
}

// Step builds the accumulator step for n.
func (n Node) Step() (railz.Step[int], error) {
	arg := n.Arg
	switch n.Op {
	case OpAdd:
		return railz.Transform(func(acc *int) { *acc += arg }), nil
	case OpSub:
		return railz.Transform(func(acc *int) { *acc -= arg }), nil
	case OpMul:
		return railz.Transform(func(acc *int) { *acc *= arg }), nil
	case OpGt:
		return railz.Check(func(acc int) bool { return acc > arg }), nil
	case OpGe:
		return railz.Check(func(acc int) bool { return acc >= arg }), nil
	case OpLt:
		return railz.Check(func(acc int) bool { return acc < arg }), nil
	case OpLe:
		return railz.Check(func(acc int) bool { return acc <= arg }), nil
	case OpEq:
		return railz.Check(func(acc int) bool { return acc == arg }), nil
	case OpNe:
		return railz.Check(func(acc int) bool { return acc != arg }), nil
	case OpFail:
		return func(*int) bool { return false }, nil
	case "":
		return nil, fmt.Errorf("node %q has no op", n.ID)
	default:
		return nil, fmt.Errorf("node %q: unknown op %q", n.ID, n.Op)
	}
}

func (n Node) describe() string {
	if n.Label != "" {
		return n.Label
	}
	if n.Op == OpFail {
		return string(n.Op)
	}
	return fmt.Sprintf("%s %d", n.Op, n.Arg)
}

// Build turns the definition into an accumulator pipeline.
func (d *Definition) Build() (*railz.Pipeline[int, int], error) {
	if d.Finish.Op != OpFinish {
		return nil, errNoFinisher
	}
	scale := d.Finish.Arg
	p := railz.NewPipeline(d.Name, railz.Finish(func(acc *int) int { return *acc * scale }))
	for _, n := range d.Stages {
		step, err := n.Step()
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.Register(railz.NewStage(n.ID, step))
	}
	return p, nil
}

// parseDefinition reads a linear chain from DOT source.
func parseDefinition(src string) (*Definition, error) {
	graphAst, err := gographviz.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}

	collector := newDOTCollector()
	if err := gographviz.Analyse(graphAst, collector); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	order, err := collector.linearize()
	if err != nil {
		return nil, err
	}

	name := collector.name
	if name == "" {
		name = "pipeline"
	}
	def := &Definition{Name: name}
	for i, id := range order {
		n, err := collector.node(id)
		if err != nil {
			return nil, err
		}
		last := i == len(order)-1
		switch {
		case last && n.Op != OpFinish:
			return nil, fmt.Errorf("last node %q must have op=%s: %w", id, OpFinish, errNoFinisher)
		case !last && n.Op == OpFinish:
			return nil, fmt.Errorf("finish node %q must be last", id)
		case last:
			def.Finish = n
		default:
			def.Stages = append(def.Stages, n)
		}
	}
	return def, nil
}

// renderDefinition writes d as a left-to-right DOT digraph.
func renderDefinition(d *Definition) (string, error) {
	g := gographviz.NewGraph()
	name := quoteID(d.Name)
	if err := g.SetName(name); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(name, "rankdir", "LR"); err != nil {
		return "", err
	}

	nodes := append(append([]Node{}, d.Stages...), d.Finish)
	for i, n := range nodes {
		attrs := gographviz.Attrs{
			gographviz.Label: strconv.Quote(n.describe()),
		}
		if n.Op != "" {
			// op and arg are not graphviz attributes, so they bypass
			// NewAttrs validation.
			attrs[gographviz.Attr(attrOp)] = strconv.Quote(string(n.Op))
			attrs[gographviz.Attr(attrArg)] = strconv.Quote(strconv.Itoa(n.Arg))
		}
		if i == len(nodes)-1 {
			attrs[gographviz.Shape] = "doublecircle"
		} else {
			attrs[gographviz.Shape] = "box"
		}
		g.Nodes.Add(&gographviz.Node{Name: quoteID(n.ID), Attrs: attrs})
		g.Relations.Add(name, quoteID(n.ID))
	}
	for i := 1; i < len(nodes); i++ {
		if err := g.AddEdge(quoteID(nodes[i-1].ID), quoteID(nodes[i].ID), true, nil); err != nil {
			return "", err
		}
	}
	return g.String(), nil
}

func quoteID(s string) string {
	return strconv.Quote(s)
}

// ─── permissive DOT collector ─────────────────────────────────────────────────

type rawEdge struct {
	from, to string
}

// dotCollector implements gographviz.Interface without attribute validation.
type dotCollector struct {
	name  string
	nodes map[string]map[string]string // id → attrs
	order []string                     // ids in first-seen order
	edges []rawEdge
}

func newDOTCollector() *dotCollector {
	return &dotCollector{
		nodes: make(map[string]map[string]string),
	}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) ensure(id string) map[string]string {
	attrs, ok := c.nodes[id]
	if !ok {
		attrs = make(map[string]string)
		c.nodes[id] = attrs
		c.order = append(c.order, id)
	}
	return attrs
}

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	node := c.ensure(unquote(name))
	for k, v := range attrs {
		node[k] = unquote(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	from, to := unquote(src), unquote(dst)
	c.ensure(from)
	c.ensure(to)
	c.edges = append(c.edges, rawEdge{from: from, to: to})
	return nil
}

func (c *dotCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *dotCollector) AddAttr(_ string, _, _ string) error { return nil }

func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// linearize orders the nodes along the edges. The graph must be a single
// path: one start node, at most one edge in and out of every node, and
// every node reachable.
func (c *dotCollector) linearize() ([]string, error) {
	if len(c.order) == 0 {
		return nil, errEmptyGraph
	}

	next := make(map[string]string, len(c.edges))
	indegree := make(map[string]int, len(c.order))
	for _, e := range c.edges {
		if e.from == e.to {
			return nil, fmt.Errorf("node %q has an edge to itself", e.from)
		}
		if existing, ok := next[e.from]; ok {
			return nil, fmt.Errorf("node %q has more than one outgoing edge (%q, %q)", e.from, existing, e.to)
		}
		next[e.from] = e.to
		indegree[e.to]++
		if indegree[e.to] > 1 {
			return nil, fmt.Errorf("node %q has more than one incoming edge", e.to)
		}
	}

	var starts []string
	for _, id := range c.order {
		if indegree[id] == 0 {
			starts = append(starts, id)
		}
	}
	if len(starts) != 1 {
		return nil, fmt.Errorf("expected exactly one start node, found %d (%s)", len(starts), strings.Join(starts, ", "))
	}

	order := make([]string, 0, len(c.order))
	seen := make(map[string]bool, len(c.order))
	for id, ok := starts[0], true; ok; id, ok = next[id] {
		if seen[id] {
			return nil, fmt.Errorf("cycle at node %q", id)
		}
		seen[id] = true
		order = append(order, id)
	}
	if len(order) != len(c.order) {
		return nil, fmt.Errorf("%d of %d nodes are not on the path from %q", len(c.order)-len(order), len(c.order), starts[0])
	}
	return order, nil
}

func (c *dotCollector) node(id string) (Node, error) {
	attrs := c.nodes[id]
	n := Node{ID: id, Op: Op(strings.ToLower(attrs[attrOp]))}
	if n.Op == "" {
		return Node{}, fmt.Errorf("node %q has no op", id)
	}

	raw, hasArg := attrs[attrArg]
	switch {
	case hasArg:
		arg, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Node{}, fmt.Errorf("node %q: invalid arg %q: %w", id, raw, err)
		}
		n.Arg = arg
	case n.Op == OpFinish:
		n.Arg = 1
	case n.Op != OpFail:
		return Node{}, fmt.Errorf("node %q: op %s needs an arg", id, n.Op)
	}

	if _, err := n.Step(); err != nil && n.Op != OpFinish {
		return Node{}, err
	}
	return n, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// unquote strips surrounding double-quotes from a DOT attribute value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
