package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/taxonomy"
)

// =============================================================================
// Document → Graph
// =============================================================================

// Node property keys written by the import builder for detailed rendering.
const (
	// PropRenderCategory is the rendering category resolved for pid nodes.
	PropRenderCategory = "renderCategory"
	// PropSymbolVariant is the symbol variant index resolved for pid nodes.
	PropSymbolVariant = "symbolVariant"
)

// Auto-layout spacing, in canvas units.
const (
	autoGridCols = 4
	autoStepX    = 200.0
	autoStepY    = 150.0
)

// Import converts a parsed document into a diagram snapshot.
//
// Import never fails: unknown classes degrade to mode fallback types,
// unresolvable port references degrade to best-effort connectivity, and
// every fallback is recorded in the returned warnings list. The returned
// mode is the diagram mode the snapshot was built for.
func Import(doc *model.Document) (graph.Snapshot, graph.Mode, []string) {
	var warnings []string
	m := &doc.Model

	mode := m.DiagramType
	if !mode.Valid() {
		mode = taxonomy.InferMode(classes(m))
		warnings = append(warnings, fmt.Sprintf(
			"document declares no diagram type; inferred %s from classes", mode))
	}

	space := NewSpace(maxDocumentY(m))

	var s graph.Snapshot
	for i := range m.Steps {
		node, ws := importStep(&m.Steps[i], mode, space)
		warnings = append(warnings, ws...)
		s.Nodes = append(s.Nodes, node)
	}
	for i := range m.ExternalPorts {
		s.Nodes = append(s.Nodes, importExternalPort(&m.ExternalPorts[i], space))
	}

	ports := buildPortTable(m, &warnings)
	for i := range m.Connections {
		edge, ws := importConnection(&m.Connections[i], ports)
		warnings = append(warnings, ws...)
		s.Edges = append(s.Edges, edge)
	}

	autoLayout(s.Nodes, m)
	return s, mode, warnings
}

func classes(m *model.ProcessModel) []string {
	out := make([]string, 0, len(m.Steps)+len(m.Connections))
	for i := range m.Steps {
		out = append(out, m.Steps[i].Type)
	}
	for i := range m.Connections {
		out = append(out, m.Connections[i].Type)
	}
	return out
}

func maxDocumentY(m *model.ProcessModel) float64 {
	maxY := 0.0
	consider := func(l *model.Layout) {
		if l != nil && l.Y > maxY {
			maxY = l.Y
		}
	}
	for i := range m.Steps {
		consider(m.Steps[i].Layout)
	}
	for i := range m.ExternalPorts {
		consider(m.ExternalPorts[i].Layout)
	}
	return maxY
}

// =============================================================================
// Nodes
// =============================================================================

func importStep(step *model.ProcessStep, mode graph.Mode, space Space) (graph.Node, []string) {
	var warnings []string

	// The round-trip anchor wins while it is still a legal type for the
	// target mode; otherwise the taxonomy decides.
	elementType := ""
	switch {
	case step.OriginalElementType != "" && taxonomy.Legal(step.OriginalElementType, mode):
		elementType = step.OriginalElementType
	default:
		t, known := taxonomy.ElementType(step.Type, mode)
		elementType = t
		if !known {
			warnings = append(warnings, fmt.Sprintf(
				"step %s: unknown class %q, imported as %s", step.ID, step.Type, t))
		}
	}

	node := graph.Node{
		ID:          step.ID,
		Type:        elementType,
		Label:       step.Name,
		Description: step.Description,
	}

	if len(step.Parameters) > 0 {
		node.Properties = make(map[string]string, len(step.Parameters))
		for _, p := range step.Parameters {
			value := p.Value
			if p.Unit != "" {
				value = p.Value + " " + p.Unit
			}
			node.Properties[p.Name] = value
		}
	}

	if mode == graph.ModeInstrument {
		if node.Properties == nil {
			node.Properties = make(map[string]string, 2)
		}
		category, ok := taxonomy.Category(step.Type)
		if ok {
			node.Properties[PropRenderCategory] = category
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"step %s: no rendering category for class %q", step.ID, step.Type))
		}
		node.Properties[PropSymbolVariant] = strconv.Itoa(taxonomy.SymbolVariant(step.Type))
	}

	applyLayout(&node, step.Layout, space)
	return node, warnings
}

func importExternalPort(port *model.ExternalPort, space Space) graph.Node {
	elementType := "feed"
	if port.Direction == model.DirectionOutlet {
		elementType = "product"
	}

	node := graph.Node{
		ID:    port.ID,
		Type:  elementType,
		Label: port.Name,
		Properties: map[string]string{
			graph.PropDirection: string(port.Direction),
		},
	}
	if port.FlowType != "" && port.FlowType != model.FlowMaterial {
		node.Properties[graph.PropStream] = string(port.FlowType)
	}
	applyLayout(&node, port.Layout, space)
	return node
}

func applyLayout(node *graph.Node, l *model.Layout, space Space) {
	if l == nil {
		return
	}
	node.X, node.Y = space.ToCanvas(l.X, l.Y)
	node.Width = l.W * space.Scale
	node.Height = l.H * space.Scale
}

// =============================================================================
// Port Resolution
// =============================================================================

// portRef locates a port on the graph side: the owning node and the handle
// name the canvas knows it by.
type portRef struct {
	node   string
	handle string
}

// portPattern matches synthesized port ids when the owner is unknown:
// {node}_in_{handle} or {node}_out_{handle}. The node id may itself contain
// underscores, so the leading group is greedy and the handle group cannot
// be; owner-aware resolution goes through extractHandle instead.
var portPattern = regexp.MustCompile(`^(.+)_(?:in|out)_([^_]+)$`)

// buildPortTable indexes every resolvable port reference: each declared
// port id, each step id itself, and two synthesized aliases per external
// port (boundary nodes act as their own default ports).
func buildPortTable(m *model.ProcessModel, warnings *[]string) map[string]portRef {
	table := make(map[string]portRef)

	for i := range m.Steps {
		step := &m.Steps[i]
		table[step.ID] = portRef{node: step.ID}
		for j := range step.Ports {
			p := &step.Ports[j]
			table[p.ID] = portRef{node: step.ID, handle: extractHandle(p.ID, step.ID, warnings)}
		}
	}

	for i := range m.ExternalPorts {
		ep := &m.ExternalPorts[i]
		ref := portRef{node: ep.ID}
		table[ep.ID] = ref
		table[ep.ID+"_in_default"] = ref
		table[ep.ID+"_out_default"] = ref
	}

	return table
}

// extractHandle recovers the canvas handle name from a port id by cutting
// the owner prefix and the direction infix right after it. Cutting at the
// infix rather than pattern-matching keeps handles that themselves contain
// underscores ("top_left", "in_2") intact. Ids that do not follow the
// synthesized convention (legacy nozzle ids) keep their full id as handle,
// and that fallback is recorded as a warning.
func extractHandle(portID, ownerID string, warnings *[]string) string {
	for _, infix := range []string{"_in_", "_out_"} {
		if handle, ok := strings.CutPrefix(portID, ownerID+infix); ok {
			if handle == "default" {
				return ""
			}
			return handle
		}
	}
	if portID == ownerID {
		return ""
	}
	*warnings = append(*warnings, fmt.Sprintf(
		"port %q on step %q does not follow the synthesized id convention; using the full id as its handle", portID, ownerID))
	return portID
}

// resolvePort maps a connection endpoint to its owning node. Resolution
// order: the port table, then pattern extraction from the raw id, then the
// raw id itself. Both fallbacks record a warning.
func resolvePort(id string, table map[string]portRef, warnings *[]string) portRef {
	if ref, ok := table[id]; ok {
		return ref
	}
	if match := portPattern.FindStringSubmatch(id); match != nil {
		handle := match[2]
		if handle == "default" {
			handle = ""
		}
		*warnings = append(*warnings, fmt.Sprintf(
			"port %q is not registered; resolved to node %q by pattern", id, match[1]))
		return portRef{node: match[1], handle: handle}
	}
	*warnings = append(*warnings, fmt.Sprintf(
		"port %q is not registered; using it as a node id", id))
	return portRef{node: id}
}

// =============================================================================
// Edges
// =============================================================================

func importConnection(conn *model.ProcessConnection, table map[string]portRef) (graph.Edge, []string) {
	var warnings []string

	from := resolvePort(conn.FromPort, table, &warnings)
	to := resolvePort(conn.ToPort, table, &warnings)

	edgeType := conn.OriginalElementType
	if edgeType == "" {
		edgeType = taxonomy.EdgeTypeFor(conn.Type)
	}

	edge := graph.Edge{
		ID:           conn.ID,
		Source:       from.node,
		Target:       to.node,
		SourceHandle: from.handle,
		TargetHandle: to.handle,
		Type:         edgeType,
		Label:        conn.Label,
	}

	props := make(map[string]string)
	if conn.FlowType != "" && conn.FlowType != model.FlowMaterial {
		props[graph.PropStream] = string(conn.FlowType)
	}
	if s := conn.Stream; s != nil {
		if s.FlowRate != nil {
			props["flowRate"] = quantityString(s.FlowRate)
		}
		if s.Temperature != nil {
			props["temperature"] = quantityString(s.Temperature)
		}
		if s.Pressure != nil {
			props["pressure"] = quantityString(s.Pressure)
		}
	}
	if len(props) > 0 {
		edge.Properties = props
	}

	return edge, warnings
}

func quantityString(q *model.Quantity) string {
	v := strconv.FormatFloat(q.Value, 'f', -1, 64)
	if q.Unit == "" {
		return v
	}
	return v + " " + q.Unit
}

// =============================================================================
// Auto-Layout
// =============================================================================

// autoLayout places nodes the document gave no position. When no node has
// a layout at all the whole diagram is grid-placed; otherwise unpositioned
// nodes go into a column beside the bounding box of the positioned ones.
func autoLayout(nodes []graph.Node, m *model.ProcessModel) {
	positioned := make(map[string]bool)
	for i := range m.Steps {
		if m.Steps[i].Layout != nil {
			positioned[m.Steps[i].ID] = true
		}
	}
	for i := range m.ExternalPorts {
		if m.ExternalPorts[i].Layout != nil {
			positioned[m.ExternalPorts[i].ID] = true
		}
	}

	if len(positioned) == 0 {
		for i := range nodes {
			nodes[i].X = float64(i%autoGridCols) * autoStepX
			nodes[i].Y = float64(i/autoGridCols) * autoStepY
		}
		return
	}

	bounds, _ := graph.BoundingBox(nodes, func(n graph.Node) bool { return positioned[n.ID] })
	row := 0
	for i := range nodes {
		if positioned[nodes[i].ID] {
			continue
		}
		nodes[i].X = bounds.MaxX + autoStepX
		nodes[i].Y = bounds.MinY + float64(row)*autoStepY
		row++
	}
}
