// internal/dosepath/dot.go
package dosepath

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

const dotGraphName = "dosepaths"

// DOT serializes the tree as a Graphviz digraph. Nodes are labelled with the
// selector's recommendation at that state ("D2", or "stop" for no dose) and
// edges with the cohort administered on them, in outcome notation. Rendering
// the text is left to external tooling.
func (t *Tree) DOT() (string, error) {
	if t == nil || t.Root == nil {
		return "", &ConfigError{Reason: "tree is nil"}
	}

	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", fmt.Errorf("failed to name DOT graph: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("failed to direct DOT graph: %w", err)
	}

	next := 0
	var add func(n *Node) (string, error)
	add = func(n *Node) (string, error) {
		id := "n" + strconv.Itoa(next)
		next++

		if err := g.AddNode(dotGraphName, id, map[string]string{
			"label": strconv.Quote(nodeLabel(n)),
		}); err != nil {
			return "", fmt.Errorf("failed to add DOT node: %w", err)
		}

		for _, c := range n.Children {
			childID, err := add(c)
			if err != nil {
				return "", err
			}
			edgeLabel := strconv.Itoa(c.Given.Dose) + c.Given.Combination.Outcomes()
			if err := g.AddEdge(id, childID, true, map[string]string{
				"label": strconv.Quote(edgeLabel),
			}); err != nil {
				return "", fmt.Errorf("failed to add DOT edge: %w", err)
			}
		}
		return id, nil
	}

	if _, err := add(t.Root); err != nil {
		return "", err
	}
	return g.String(), nil
}

func nodeLabel(n *Node) string {
	if n.Recommendation == 0 {
		return "stop"
	}
	return "D" + strconv.Itoa(n.Recommendation)
}
