// internal/dosepath/builder.go
package dosepath

import (
	"fmt"
	"time"
)

// Query configures one dose-path enumeration.
type Query struct {
	// CohortSizes holds one cohort size per tree depth; its length is the
	// enumeration horizon. Required.
	CohortSizes []int
	// PreviousOutcomes seeds the history with already-observed outcomes,
	// in outcome notation. Default empty.
	PreviousOutcomes string
	// NextDose forces the starting recommendation instead of inferring it
	// from the (possibly empty) seed history. 0 means infer.
	NextDose int
}

// GivenCohort is the cohort administered on the edge into a node: the dose the
// parent recommended plus the toxicity-count combination observed.
type GivenCohort struct {
	Dose        int
	Combination Combination
}

// Node is one state in the dose-path tree. Immutable once built.
type Node struct {
	// Depth counts cohorts beyond the seed history; the root is 0.
	Depth          int
	Given          *GivenCohort // nil at the root
	History        Outcomes     // seed plus path so far
	Recommendation int          // 0 = no dose
	Stop           bool
	Children       []*Node
}

// Leaf reports whether the node has no children.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Tree is a fully expanded dose-path tree.
type Tree struct {
	Root        *Node
	CohortSizes []int
	Seed        Outcomes
	NumNodes    int64
}

// NodesPerDepth counts the tree's nodes at each depth, root included. With a
// never-stopping selector this matches NumDosePathNodes exactly.
func (t *Tree) NodesPerDepth() []int64 {
	counts := make([]int64, len(t.CohortSizes)+1)
	var walk func(n *Node)
	walk = func(n *Node) {
		counts[n.Depth]++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return counts
}

// Walk visits every node depth-first, parents before children, siblings in
// ascending toxicity-count order.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
}

const defaultMaxNodes = 1_000_000

// Builder expands dose-path trees.
type Builder struct {
	observer FitObserver
	maxNodes int64
}

type BuildOption func(*Builder)

// WithFitObserver reports per-node selector refit latency.
func WithFitObserver(observer FitObserver) BuildOption {
	return func(b *Builder) {
		b.observer = observer
	}
}

// WithMaxNodes caps the tree's node count. The cap guards against runaway
// horizons; exceeding it aborts the build with no partial tree.
func WithMaxNodes(n int64) BuildOption {
	return func(b *Builder) {
		if n > 0 {
			b.maxNodes = n
		}
	}
}

func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{maxNodes: defaultMaxNodes}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build expands the full dose-path tree for the query. At every node the
// selector is refit on the accumulated history and its decision recorded; a
// node becomes a leaf when the selector stops, recommends no dose, or the
// horizon is reached. Otherwise the node gets one child per distinct
// toxicity-count combination of the next cohort, administered at the node's
// recommended dose. Construction is all-or-nothing: any selector failure
// aborts the whole build.
func (b *Builder) Build(sel Selector, q Query) (*Tree, error) {
	if sel == nil {
		return nil, &ConfigError{Reason: "selector is nil"}
	}
	if len(q.CohortSizes) == 0 {
		return nil, &ConfigError{Reason: "cohort sizes must not be empty"}
	}
	for _, n := range q.CohortSizes {
		if n < 1 {
			return nil, &ConfigError{Reason: "cohort size must be positive"}
		}
	}
	if q.NextDose < 0 {
		return nil, &ConfigError{Reason: "next dose must not be negative"}
	}

	seed, err := Parse(q.PreviousOutcomes)
	if err != nil {
		return nil, err
	}

	var count int64
	root, err := b.expand(sel, seed, 0, q.NextDose, q.CohortSizes, &count)
	if err != nil {
		return nil, err
	}

	return &Tree{Root: root, CohortSizes: q.CohortSizes, Seed: seed, NumNodes: count}, nil
}

func (b *Builder) expand(sel Selector, history Outcomes, depth, forcedDose int, cohortSizes []int, count *int64) (*Node, error) {
	fitStart := time.Now()
	dec, err := sel.Recommend(history)
	b.observeFit(depth, time.Since(fitStart))
	if err != nil {
		return nil, &ModelError{History: history.String(), Err: err}
	}

	if forcedDose > 0 {
		// A forced starting dose means the trial starts there regardless
		// of what the model infers from the seed.
		dec = Decision{Dose: forcedDose, Stop: false}
	}

	(*count)++
	if *count > b.maxNodes {
		return nil, fmt.Errorf("dose-path tree exceeds %d nodes; shorten the horizon or cohort sizes", b.maxNodes)
	}

	node := &Node{
		Depth:          depth,
		History:        history,
		Recommendation: dec.Dose,
		Stop:           dec.Stop,
	}

	// No dose to administer means there is nothing to enumerate, even when
	// the model did not set its stop flag explicitly.
	if dec.Stop || dec.NoDose() || depth == len(cohortSizes) {
		return node, nil
	}

	combos, err := CohortCombinations(cohortSizes[depth])
	if err != nil {
		return nil, err
	}

	node.Children = make([]*Node, 0, len(combos))
	for _, combo := range combos {
		childHistory := history.Append(Cohort{Dose: dec.Dose, Outcomes: combo.Tokens()})
		child, err := b.expand(sel, childHistory, depth+1, 0, cohortSizes, count)
		if err != nil {
			return nil, err
		}
		child.Given = &GivenCohort{Dose: dec.Dose, Combination: combo}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func (b *Builder) observeFit(depth int, duration time.Duration) {
	if b.observer == nil {
		return
	}
	b.observer.ObserveFitLatency(depth, duration)
}
