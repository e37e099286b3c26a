// internal/dosepath/crystallise.go
package dosepath

import (
	"fmt"
	"math"
)

// Path is one complete root-to-leaf dose-path with its exact probability
// under the assumed true toxicity rates.
type Path struct {
	Outcomes  string  `json:"outcomes"`
	Prob      float64 `json:"prob"`
	FinalDose int     `json:"final_dose"` // 0 = no dose
	Stopped   bool    `json:"stopped"`    // the selector's own stop flag
	AtHorizon bool    `json:"at_horizon"`
}

// Summary aggregates probability mass over all complete paths.
type Summary struct {
	// ProbRecommend maps each final recommended dose to its probability
	// mass; key 0 collects paths ending with no recommendation.
	ProbRecommend   map[int]float64 `json:"prob_recommend"`
	ProbNoDose      float64         `json:"prob_no_dose"`
	ProbContinuance float64         `json:"prob_continuance"`
	TotalProb       float64         `json:"total_prob"`
}

// Crystallisation is the result of pricing every dose-path against assumed
// true per-dose toxicity rates.
type Crystallisation struct {
	Paths   []Path  `json:"paths,omitempty"`
	Summary Summary `json:"summary"`
	// Warning is set when leaf probabilities fail to sum to one within
	// tolerance. That points at double-counted or missing outcome
	// combinations and deserves investigation, not masking.
	Warning string `json:"warning,omitempty"`
}

const probTolerance = 1e-9

// Crystallise walks a built tree and computes each leaf's exact probability:
// the product, along the path, of the binomial mass of every cohort's
// toxicity-count combination at the dose it was given. The tree is read-only
// input; the enumeration is exhaustive and the combinations at each cohort
// partition the outcome space, so the leaf masses must sum to one.
func Crystallise(t *Tree, trueProbTox []float64) (*Crystallisation, error) {
	if t == nil || t.Root == nil {
		return nil, &ConfigError{Reason: "tree is nil"}
	}
	if len(trueProbTox) == 0 {
		return nil, &ConfigError{Reason: "true_prob_tox must not be empty"}
	}
	for i, p := range trueProbTox {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, &ConfigError{Reason: fmt.Sprintf("true_prob_tox[%d] = %v outside [0, 1]", i, p)}
		}
	}
	if err := checkDoseRange(t, len(trueProbTox)); err != nil {
		return nil, err
	}

	horizon := len(t.CohortSizes)
	out := &Crystallisation{
		Summary: Summary{ProbRecommend: map[int]float64{}},
	}

	var walk func(n *Node, prob float64)
	walk = func(n *Node, prob float64) {
		if n.Given != nil {
			prob *= n.Given.Combination.Prob(trueProbTox[n.Given.Dose-1])
		}
		if !n.Leaf() {
			for _, c := range n.Children {
				walk(c, prob)
			}
			return
		}

		atHorizon := n.Depth == horizon
		out.Paths = append(out.Paths, Path{
			Outcomes:  n.History.String(),
			Prob:      prob,
			FinalDose: n.Recommendation,
			Stopped:   n.Stop,
			AtHorizon: atHorizon,
		})

		out.Summary.ProbRecommend[n.Recommendation] += prob
		if n.Recommendation == 0 {
			out.Summary.ProbNoDose += prob
		}
		if atHorizon && !n.Stop {
			out.Summary.ProbContinuance += prob
		}
		out.Summary.TotalProb += prob
	}
	walk(t.Root, 1)

	if math.Abs(out.Summary.TotalProb-1) > probTolerance {
		out.Warning = fmt.Sprintf("leaf probabilities sum to %.12f, expected 1 within %g", out.Summary.TotalProb, probTolerance)
	}

	return out, nil
}

func checkDoseRange(t *Tree, numDoses int) error {
	var bad error
	t.Walk(func(n *Node) {
		if bad != nil {
			return
		}
		if n.Given != nil && (n.Given.Dose < 1 || n.Given.Dose > numDoses) {
			bad = &ConfigError{Reason: fmt.Sprintf("tree references dose %d but true_prob_tox covers %d doses", n.Given.Dose, numDoses)}
		}
	})
	return bad
}
