package scenario

import (
	"fmt"
	"strings"
)

// CycleError is returned when the edges do not form a DAG. Nodes lists the ids
// that could not be ordered, in input order.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("scenario graph contains a cycle involving nodes [%s]", strings.Join(e.Nodes, ", "))
}

// DanglingEdgeError is returned when an edge references a node id absent from the graph.
type DanglingEdgeError struct {
	Edge    Edge
	Missing string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s references unknown node %q", e.Edge.Source, e.Edge.Target, e.Missing)
}

type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node id %q", e.ID)
}
