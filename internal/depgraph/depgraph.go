// Package depgraph orders canonical objects so that everything is
// declared before its first use. It is a plain string-keyed dependency
// graph with a deterministic topological sort: same input, same order,
// every run.
package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Graph holds nodes in insertion order and directed dependency edges.
// An edge A -> B means A depends on B, so B must sort earlier.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	id   string
	deps map[string]*node
	// depOrder keeps edge insertion order; map iteration alone would
	// make the sort nondeterministic.
	depOrder []string
}

// CycleError reports a dependency cycle with the full path, first node
// repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode registers a node. Re-adding an existing ID does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id, deps: make(map[string]*node)}
	g.order = append(g.order, id)
}

// AddEdge records that fromID depends on toID. Both nodes must already
// exist. A self-referential edge is the smallest possible cycle and is
// rejected immediately, with the same error shape as the sort's cycle
// detection.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return &CycleError{Path: []string{fromID, fromID}}
	}
	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	if _, ok := from.deps[toID]; ok {
		return nil
	}
	from.deps[toID] = to
	from.depOrder = append(from.depOrder, toID)
	return nil
}

// Dependencies returns the IDs a node depends on, in edge insertion
// order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return append([]string(nil), n.depOrder...), nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Sort returns every node in dependency order: each node appears after
// all of its dependencies. Among unconstrained nodes the order follows
// the optional less function, falling back to insertion order, so the
// result is stable across runs. A cycle aborts the sort with a
// CycleError carrying the full cycle path.
func (g *Graph) Sort(less func(a, b string) bool) ([]string, error) {
	roots := append([]string(nil), g.order...)
	if less != nil {
		sort.SliceStable(roots, func(i, j int) bool { return less(roots[i], roots[j]) })
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))
	out := make([]string, 0, len(g.nodes))

	var visit func(n *node, stack []string) error
	visit = func(n *node, stack []string) error {
		switch state[n.id] {
		case done:
			return nil
		case visiting:
			return &CycleError{Path: cyclePath(stack, n.id)}
		}
		state[n.id] = visiting
		stack = append(stack, n.id)
		for _, depID := range n.depOrder {
			if err := visit(n.deps[depID], stack); err != nil {
				return err
			}
		}
		state[n.id] = done
		out = append(out, n.id)
		return nil
	}

	for _, id := range roots {
		if err := visit(g.nodes[id], nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// cyclePath trims the DFS stack to the cycle proper and closes it.
func cyclePath(stack []string, repeat string) []string {
	start := 0
	for i, id := range stack {
		if id == repeat {
			start = i
			break
		}
	}
	path := append([]string(nil), stack[start:]...)
	return append(path, repeat)
}
