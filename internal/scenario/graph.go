package scenario

type NodeType string

const (
	NodeTypeStart      NodeType = "start"
	NodeTypeEnd        NodeType = "end"
	NodeTypeAPI        NodeType = "api"
	NodeTypeRequest    NodeType = "request"
	NodeTypeWait       NodeType = "wait"
	NodeTypeDB         NodeType = "db"
	NodeTypeScript     NodeType = "script"
	NodeTypeConcurrent NodeType = "concurrent"
)

// IsControl reports whether the node only anchors the visual graph.
func (t NodeType) IsControl() bool {
	return t == NodeTypeStart || t == NodeTypeEnd
}

// IsRequest reports whether the node describes an HTTP call.
func (t NodeType) IsRequest() bool {
	return t == NodeTypeAPI || t == NodeTypeRequest
}

// Graph is the editor representation of a scenario: nodes plus ordered edges.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	ID       string            `json:"id"`
	Type     NodeType          `json:"type"`
	Label    string            `json:"label,omitempty"`
	Config   map[string]any    `json:"config,omitempty"`
	Extract  map[string]string `json:"extract,omitempty"`
	Validate []any             `json:"validate,omitempty"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Step is one unit of the linearized scenario. Order is its position in the compiled sequence.
type Step struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Kind     NodeType          `json:"type"`
	Order    int               `json:"order"`
	Config   map[string]any    `json:"config,omitempty"`
	Extract  map[string]string `json:"extract,omitempty"`
	Validate []any             `json:"validate,omitempty"`
}
