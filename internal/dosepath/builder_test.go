// internal/dosepath/builder_test.go
package dosepath

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// alwaysContinue recommends the same dose forever and never stops; it expands
// every tree to its full horizon.
func alwaysContinue(dose int) Selector {
	return SelectorFunc(func(history Outcomes) (Decision, error) {
		return Decision{Dose: dose}, nil
	})
}

type fitCounter struct {
	fits []int
}

func (f *fitCounter) ObserveFitLatency(depth int, duration time.Duration) {
	f.fits = append(f.fits, depth)
}

func TestBuild_NonStoppingSelectorMatchesNodeCountCalculator(t *testing.T) {
	sizes := []int{3, 3, 3}
	b := NewBuilder()
	tree, err := b.Build(alwaysContinue(1), Query{CohortSizes: sizes})
	if err != nil {
		t.Fatal(err)
	}

	want, err := NumDosePathNodes(2, sizes)
	if err != nil {
		t.Fatal(err)
	}

	got := tree.NodesPerDepth()
	for d := range want {
		if got[d] != want[d] {
			t.Fatalf("depth %d: expected %d nodes, got %d", d, want[d], got[d])
		}
	}
	if tree.NumNodes != 1+4+16+64 {
		t.Fatalf("expected 85 nodes, got %d", tree.NumNodes)
	}
}

func TestBuild_StopFlagPrunesSubtree(t *testing.T) {
	// Stop as soon as any toxicity is seen.
	sel := SelectorFunc(func(history Outcomes) (Decision, error) {
		for _, c := range history.Cohorts {
			if c.NumTox() > 0 {
				return Decision{Stop: true}, nil
			}
		}
		return Decision{Dose: 1}, nil
	})

	tree, err := NewBuilder().Build(sel, Query{CohortSizes: []int{2, 2}})
	if err != nil {
		t.Fatal(err)
	}

	// Depth 1 has 3 children; only the zero-tox child expands further.
	counts := tree.NodesPerDepth()
	if counts[0] != 1 || counts[1] != 3 || counts[2] != 3 {
		t.Fatalf("unexpected node counts: %v", counts)
	}

	for _, child := range tree.Root.Children {
		if child.Given.Combination.NumTox > 0 && !child.Leaf() {
			t.Fatalf("toxic child at depth 1 was expanded")
		}
	}
}

func TestBuild_NoDoseRecommendationIsALeaf(t *testing.T) {
	// No stop flag, but nothing to recommend either: there is no dose at
	// which to enumerate the next cohort.
	calls := 0
	sel := SelectorFunc(func(history Outcomes) (Decision, error) {
		calls++
		return Decision{}, nil
	})

	tree, err := NewBuilder().Build(sel, Query{CohortSizes: []int{3, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Root.Leaf() {
		t.Fatalf("expected a single-node tree")
	}
	if calls != 1 {
		t.Fatalf("expected one selector call, got %d", calls)
	}
}

func TestBuild_NextDoseOverridesFirstRecommendation(t *testing.T) {
	sel := alwaysContinue(3)

	tree, err := NewBuilder().Build(sel, Query{CohortSizes: []int{2}, NextDose: 1})
	if err != nil {
		t.Fatal(err)
	}

	if tree.Root.Recommendation != 1 {
		t.Fatalf("expected forced root recommendation 1, got %d", tree.Root.Recommendation)
	}
	for _, child := range tree.Root.Children {
		if child.Given.Dose != 1 {
			t.Fatalf("child cohort given at dose %d, expected forced dose 1", child.Given.Dose)
		}
		if child.History.Cohorts[0].Dose != 1 {
			t.Fatalf("descendant history does not start at the forced dose: %q", child.History.String())
		}
	}
}

func TestBuild_SeedHistoryChangesRecommendations(t *testing.T) {
	// Escalate one level per cohort already treated: not memoryless, so a
	// nonempty seed must shift every recommendation.
	sel := SelectorFunc(func(history Outcomes) (Decision, error) {
		return Decision{Dose: len(history.Cohorts) + 1}, nil
	})

	empty, err := NewBuilder().Build(sel, Query{CohortSizes: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	seeded, err := NewBuilder().Build(sel, Query{CohortSizes: []int{2}, PreviousOutcomes: "1NN 2NN"})
	if err != nil {
		t.Fatal(err)
	}

	if empty.Root.Recommendation != 1 {
		t.Fatalf("expected empty-seed root recommendation 1, got %d", empty.Root.Recommendation)
	}
	if seeded.Root.Recommendation != 3 {
		t.Fatalf("expected seeded root recommendation 3, got %d", seeded.Root.Recommendation)
	}
	if seeded.Root.History.String() != "1NN 2NN" {
		t.Fatalf("expected seeded root history, got %q", seeded.Root.History.String())
	}
}

func TestBuild_SelectorFailureAbortsWithHistory(t *testing.T) {
	sel := SelectorFunc(func(history Outcomes) (Decision, error) {
		if history.NumPatients() >= 2 {
			return Decision{}, fmt.Errorf("fit diverged")
		}
		return Decision{Dose: 2}, nil
	})

	_, err := NewBuilder().Build(sel, Query{CohortSizes: []int{2, 2}})
	if err == nil {
		t.Fatalf("expected error")
	}

	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatalf("expected ModelError, got %T", err)
	}
	if me.History == "" {
		t.Fatalf("expected the triggering history attached")
	}
}

func TestBuild_ConfigValidation(t *testing.T) {
	b := NewBuilder()

	cases := []Query{
		{},                         // missing cohort sizes
		{CohortSizes: []int{3, 0}}, // non-positive cohort size
		{CohortSizes: []int{3}, NextDose: -1},
	}
	for _, q := range cases {
		_, err := b.Build(alwaysContinue(1), q)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("query %#v: expected ConfigError, got %v", q, err)
		}
	}

	_, err := b.Build(alwaysContinue(1), Query{CohortSizes: []int{3}, PreviousOutcomes: "XNN"})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for bad seed notation, got %v", err)
	}
}

func TestBuild_MaxNodesAborts(t *testing.T) {
	b := NewBuilder(WithMaxNodes(3))
	_, err := b.Build(alwaysContinue(1), Query{CohortSizes: []int{3, 3}})
	if err == nil {
		t.Fatalf("expected node budget error")
	}
}

func TestBuild_ObservesOneFitPerNode(t *testing.T) {
	obs := &fitCounter{}
	b := NewBuilder(WithFitObserver(obs))

	tree, err := b.Build(alwaysContinue(1), Query{CohortSizes: []int{2, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(obs.fits)) != tree.NumNodes {
		t.Fatalf("expected %d observed fits, got %d", tree.NumNodes, len(obs.fits))
	}
}

func TestBuild_DeterministicShape(t *testing.T) {
	sel := SelectorFunc(func(history Outcomes) (Decision, error) {
		tox := 0
		for _, c := range history.Cohorts {
			tox += c.NumTox()
		}
		if tox >= 2 {
			return Decision{Stop: true}, nil
		}
		return Decision{Dose: len(history.Cohorts)%3 + 1}, nil
	})

	q := Query{CohortSizes: []int{2, 2, 2}}
	a, err := NewBuilder().Build(sel, q)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBuilder().Build(sel, q)
	if err != nil {
		t.Fatal(err)
	}

	dotA, err := a.DOT()
	if err != nil {
		t.Fatal(err)
	}
	dotB, err := b.DOT()
	if err != nil {
		t.Fatal(err)
	}
	if dotA != dotB {
		t.Fatalf("identical inputs produced different trees")
	}
}
