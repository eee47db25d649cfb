package dag

import (
	"fmt"
)

// addNode inserts a node, rejecting duplicate IDs.
func (g *Graph) addNode(n *Node) error {
	if _, exists := g.Nodes[n.ID]; exists {
		return fmt.Errorf("duplicate step definition: %s", n.ID)
	}
	n.Deps = make(map[string]*Node)
	n.Dependents = make(map[string]*Node)
	g.Nodes[n.ID] = n
	return nil
}

// addEdge creates a directed edge meaning toID depends on fromID.
func (g *Graph) addEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential dependency not allowed: %s", fromID)
	}

	fromNode, ok := g.Nodes[fromID]
	if !ok {
		return fmt.Errorf("dependency %q of %q does not exist", fromID, toID)
	}
	toNode, ok := g.Nodes[toID]
	if !ok {
		return fmt.Errorf("node not found: %s", toID)
	}

	toNode.Deps[fromID] = fromNode
	fromNode.Dependents[toID] = toNode
	return nil
}

// detectCycles checks the graph for cycles using a depth-first search
// with the classic permanent/temporary mark sets.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}

		temporary[n.ID] = true
		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.ID)
		permanent[n.ID] = true
		return nil
	}

	for _, n := range g.Nodes {
		if !permanent[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Roots returns the nodes with no outstanding dependencies, the starting
// set for the executor.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes {
		if len(n.Deps) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Exec returns the program-invocation node.
func (g *Graph) Exec() *Node {
	return g.Nodes[g.ExecID]
}
