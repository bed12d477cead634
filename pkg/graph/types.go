package graph

import "strings"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Mode identifies the detail level of a process diagram.
type Mode string

// Diagram modes, ordered from lowest to highest detail.
const (
	// ModeBlock is a block flow diagram: coarse process steps only.
	ModeBlock Mode = "block"
	// ModeProcess is a process flow diagram: typed major equipment.
	ModeProcess Mode = "pfd"
	// ModeInstrument is a piping & instrumentation diagram: full equipment,
	// valves, and instrumentation detail.
	ModeInstrument Mode = "pid"
)

// Detail returns the detail rank of a mode (0 = lowest).
// Unknown modes rank lowest.
func (m Mode) Detail() int {
	switch m {
	case ModeProcess:
		return 1
	case ModeInstrument:
		return 2
	default:
		return 0
	}
}

// Valid reports whether m is one of the known diagram modes.
func (m Mode) Valid() bool {
	return m == ModeBlock || m == ModeProcess || m == ModeInstrument
}

// ParseMode converts a string to a Mode, accepting common aliases.
// Returns ModeProcess for unrecognized input.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "bfd":
		return ModeBlock
	case "pfd", "process":
		return ModeProcess
	case "pid", "p&id", "instrument":
		return ModeInstrument
	default:
		return ModeProcess
	}
}

// Well-known node property keys used by the converter.
const (
	// PropStream names the flow carried by an edge: "material", "energy",
	// "utility", or "information".
	PropStream = "stream"
	// PropDirection marks a boundary node as "inlet" or "outlet" explicitly,
	// overriding the positional heuristic.
	PropDirection = "direction"
)

// =============================================================================
// Snapshot - Diagram Graph Serialization
// =============================================================================

// Snapshot is the canonical serialization format for a diagram graph.
// It mirrors what the canvas holds: typed nodes with positions and free-form
// properties, and typed edges with optional handle names.
//
// The format is designed for round-trip fidelity: export → import preserves
// node type tags, labels, and edge endpoints.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a single diagram element. The Type string is the diagram's own
// vocabulary ("reactor", "tank", ...), distinct from interchange classes.
type Node struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	X           float64           `json:"x"`
	Y           float64           `json:"y"`
	Width       float64           `json:"width,omitempty"`
	Height      float64           `json:"height,omitempty"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Property returns the named property, or "" when absent.
func (n *Node) Property(key string) string {
	if n.Properties == nil {
		return ""
	}
	return n.Properties[key]
}

// Edge is a directed connection between two nodes. Handles identify which
// connection point on each node the edge attaches to; empty means the
// default handle.
type Edge struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	SourceHandle string            `json:"sourceHandle,omitempty"`
	TargetHandle string            `json:"targetHandle,omitempty"`
	Type         string            `json:"type"`
	Label        string            `json:"label,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Property returns the named property, or "" when absent.
func (e *Edge) Property(key string) string {
	if e.Properties == nil {
		return ""
	}
	return e.Properties[key]
}

// =============================================================================
// Geometry Helpers
// =============================================================================

// Bounds is an axis-aligned bounding box over node positions.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// MidX returns the horizontal midpoint of the bounds.
func (b Bounds) MidX() float64 { return (b.MinX + b.MaxX) / 2 }

// BoundingBox computes the bounding box of all nodes for which keep returns
// true. The second return is false when no node matched.
func BoundingBox(nodes []Node, keep func(Node) bool) (Bounds, bool) {
	var b Bounds
	found := false
	for _, n := range nodes {
		if keep != nil && !keep(n) {
			continue
		}
		if !found {
			b = Bounds{MinX: n.X, MinY: n.Y, MaxX: n.X, MaxY: n.Y}
			found = true
			continue
		}
		if n.X < b.MinX {
			b.MinX = n.X
		}
		if n.Y < b.MinY {
			b.MinY = n.Y
		}
		if n.X > b.MaxX {
			b.MaxX = n.X
		}
		if n.Y > b.MaxY {
			b.MaxY = n.Y
		}
	}
	return b, found
}
