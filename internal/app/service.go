// internal/app/service.go
package app

import (
	"fmt"

	"github.com/oncostat/dosepath/internal/dosepath"
)

type DesignCompiler interface {
	Compile(src string, numDoses, startDose int) (dosepath.Selector, error)
}

type TreeBuilder interface {
	Build(sel dosepath.Selector, q dosepath.Query) (*dosepath.Tree, error)
}

type Cache interface {
	GetOrCompute(key string, fn func() (dosepath.Selector, error)) (dosepath.Selector, error)
}

// PathsRequest carries everything one enumeration or crystallisation needs.
type PathsRequest struct {
	Design           string
	NumDoses         int
	StartDose        int // 0 means dose 1
	CohortSizes      []int
	PreviousOutcomes string
	NextDose         int // 0 means infer from the design
	TrueProbTox      []float64
	IncludePaths     bool
	IncludeDOT       bool
}

// TreeResult describes an enumerated dose-path tree: actual node counts per
// depth, the closed-form no-stopping upper bound, and optionally the tree as
// DOT text.
type TreeResult struct {
	NodesPerDepth []int64 `json:"nodes_per_depth"`
	UpperBound    []int64 `json:"upper_bound"`
	NumNodes      int64   `json:"num_nodes"`
	NumPaths      int     `json:"num_paths"`
	DOT           string  `json:"dot,omitempty"`
}

// CrystalliseResult is the exact operating characteristics of a design under
// assumed true toxicity rates.
type CrystalliseResult struct {
	Summary dosepath.Summary `json:"summary"`
	Paths   []dosepath.Path  `json:"paths,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

type Service struct {
	compiler DesignCompiler
	builder  TreeBuilder
	cache    Cache
}

func NewService(compiler DesignCompiler, builder TreeBuilder, cache Cache) *Service {
	return &Service{compiler: compiler, builder: builder, cache: cache}
}

// Enumerate compiles the design (cached), builds its dose-path tree and
// reports the tree's shape.
func (s *Service) Enumerate(req PathsRequest) (*TreeResult, error) {
	tree, err := s.buildTree(req)
	if err != nil {
		return nil, err
	}

	bound, err := dosepath.NumDosePathNodes(2, req.CohortSizes)
	if err != nil {
		return nil, err
	}

	numPaths := 0
	tree.Walk(func(n *dosepath.Node) {
		if n.Leaf() {
			numPaths++
		}
	})

	out := &TreeResult{
		NodesPerDepth: tree.NodesPerDepth(),
		UpperBound:    bound,
		NumNodes:      tree.NumNodes,
		NumPaths:      numPaths,
	}

	if req.IncludeDOT {
		dot, err := tree.DOT()
		if err != nil {
			return nil, err
		}
		out.DOT = dot
	}

	return out, nil
}

// Crystallise builds the design's dose-path tree and prices every path against
// the assumed true toxicity rates.
func (s *Service) Crystallise(req PathsRequest) (*CrystalliseResult, error) {
	if len(req.TrueProbTox) != req.NumDoses {
		return nil, &dosepath.ConfigError{
			Reason: fmt.Sprintf("true_prob_tox has %d entries for %d doses", len(req.TrueProbTox), req.NumDoses),
		}
	}

	tree, err := s.buildTree(req)
	if err != nil {
		return nil, err
	}

	crys, err := dosepath.Crystallise(tree, req.TrueProbTox)
	if err != nil {
		return nil, err
	}

	out := &CrystalliseResult{Summary: crys.Summary, Warning: crys.Warning}
	if req.IncludePaths {
		out.Paths = crys.Paths
	}
	return out, nil
}

func (s *Service) buildTree(req PathsRequest) (*dosepath.Tree, error) {
	if req.Design == "" {
		return nil, &dosepath.ConfigError{Reason: "design is required"}
	}
	if req.NumDoses < 1 {
		return nil, &dosepath.ConfigError{Reason: "num_doses must be positive"}
	}
	if req.NextDose < 0 || req.NextDose > req.NumDoses {
		return nil, &dosepath.ConfigError{
			Reason: fmt.Sprintf("next_dose %d outside 1..%d", req.NextDose, req.NumDoses),
		}
	}

	sel, err := s.cache.GetOrCompute(designKey(req), func() (dosepath.Selector, error) {
		return s.compiler.Compile(req.Design, req.NumDoses, req.StartDose)
	})
	if err != nil {
		return nil, err
	}

	return s.builder.Build(sel, dosepath.Query{
		CohortSizes:      req.CohortSizes,
		PreviousOutcomes: req.PreviousOutcomes,
		NextDose:         req.NextDose,
	})
}

// designKey separates identical rule text compiled for different dose grids.
func designKey(req PathsRequest) string {
	return fmt.Sprintf("%d/%d\x00%s", req.NumDoses, req.StartDose, req.Design)
}
