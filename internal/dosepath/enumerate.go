// internal/dosepath/enumerate.go
package dosepath

import (
	"math"
	"strings"
)

// Combination is one distinct toxicity-count outcome for a cohort: j
// toxicities out of n patients. All C(n,j) patient orderings collapse into it;
// Weight carries that multiplicity so collapsed enumeration stays exact.
type Combination struct {
	Size   int
	NumTox int
	Weight int64
}

// Outcomes renders the combination in canonical notation order, no-toxicity
// letters first, e.g. "NNT" for 1 of 3.
func (c Combination) Outcomes() string {
	return strings.Repeat("N", c.Size-c.NumTox) + strings.Repeat("T", c.NumTox)
}

// Tokens returns the combination's patient outcomes in canonical order.
func (c Combination) Tokens() []OutcomeToken {
	toks := make([]OutcomeToken, c.Size)
	for i := c.Size - c.NumTox; i < c.Size; i++ {
		toks[i] = Toxicity
	}
	return toks
}

// Prob is the exact binomial mass of this combination when each patient
// independently experiences toxicity with probability p.
func (c Combination) Prob(p float64) float64 {
	return BinomPMF(c.Size, c.NumTox, p)
}

// CohortCombinations enumerates the distinct toxicity-count combinations for a
// cohort of n patients with binary outcomes, ordered by ascending toxicity
// count. There are n+1 of them, versus 2^n patient orderings; downstream dose
// models only see counts, so nothing is lost by collapsing.
func CohortCombinations(n int) ([]Combination, error) {
	if n < 1 {
		return nil, &ConfigError{Reason: "cohort size must be positive"}
	}
	out := make([]Combination, 0, n+1)
	for j := 0; j <= n; j++ {
		out = append(out, Combination{Size: n, NumTox: j, Weight: Choose(n, j)})
	}
	return out, nil
}

// Choose computes the binomial coefficient C(n, k). Returns 0 for k outside
// [0, n]. Intermediate products stay exact for the cohort sizes seen in
// phase I trials.
func Choose(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var c int64 = 1
	for i := 0; i < k; i++ {
		c = c * int64(n-i) / int64(i+1)
	}
	return c
}

// BinomPMF is the binomial probability mass C(n,j) p^j (1-p)^(n-j).
func BinomPMF(n, j int, p float64) float64 {
	if j < 0 || j > n {
		return 0
	}
	return float64(Choose(n, j)) * math.Pow(p, float64(j)) * math.Pow(1-p, float64(n-j))
}
