package scenario

import (
	"maps"
	"slices"
	"sort"
)

// Compile linearizes the graph into execution steps.
//
// Ordering is a topological sort where ties are broken by the position of the
// node in g.Nodes, so the same graph always yields the same plan. start and end
// nodes are dropped after ordering. On any error no steps are returned.
func Compile(g Graph) ([]Step, error) {
	index := make(map[string]int, len(g.Nodes))
	for i, node := range g.Nodes {
		if _, exists := index[node.ID]; exists {
			return nil, &DuplicateNodeError{ID: node.ID}
		}
		index[node.ID] = i
	}

	inDegree := make([]int, len(g.Nodes))
	adj := make([][]int, len(g.Nodes))
	for _, edge := range g.Edges {
		from, ok := index[edge.Source]
		if !ok {
			return nil, &DanglingEdgeError{Edge: edge, Missing: edge.Source}
		}
		to, ok := index[edge.Target]
		if !ok {
			return nil, &DanglingEdgeError{Edge: edge, Missing: edge.Target}
		}
		adj[from] = append(adj[from], to)
		inDegree[to]++
	}

	ready := make([]int, 0, len(g.Nodes))
	for i, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]int, 0, len(g.Nodes))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		ordered = append(ordered, current)
		for _, next := range adj[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				pos := sort.SearchInts(ready, next)
				ready = slices.Insert(ready, pos, next)
			}
		}
	}

	if len(ordered) != len(g.Nodes) {
		remaining := make([]string, 0, len(g.Nodes)-len(ordered))
		for i, degree := range inDegree {
			if degree > 0 {
				remaining = append(remaining, g.Nodes[i].ID)
			}
		}
		return nil, &CycleError{Nodes: remaining}
	}

	steps := make([]Step, 0, len(ordered))
	for _, i := range ordered {
		node := g.Nodes[i]
		if node.Type.IsControl() {
			continue
		}
		name := node.Label
		if name == "" {
			name = node.ID
		}
		steps = append(steps, Step{
			ID:       node.ID,
			Name:     name,
			Kind:     node.Type,
			Order:    len(steps),
			Config:   maps.Clone(node.Config),
			Extract:  maps.Clone(node.Extract),
			Validate: slices.Clone(node.Validate),
		})
	}
	return steps, nil
}
