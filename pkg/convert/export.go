package convert

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/taxonomy"
)

// =============================================================================
// Graph → Document
// =============================================================================

// ExportOptions configures one export call.
type ExportOptions struct {
	// Mode is the diagram mode of the snapshot. Required for class
	// fallbacks; defaults to pfd via graph.ParseMode semantics.
	Mode graph.Mode

	// ModelID identifies the process model. Synthesized when empty.
	ModelID string

	// Name and Description label the process model.
	Name        string
	Description string
}

// Export converts a diagram snapshot into an interchange document.
//
// Export never fails: unsupported element or edge types degrade to generic
// classes, and every degradation is recorded in the returned warnings list.
func Export(s graph.Snapshot, opts ExportOptions) (*model.Document, []string) {
	if !opts.Mode.Valid() {
		opts.Mode = graph.ModeProcess
	}

	var warnings []string
	m := model.ProcessModel{
		ID:          opts.ModelID,
		Name:        opts.Name,
		Description: opts.Description,
		DiagramType: opts.Mode,
	}
	if m.ID == "" {
		m.ID = "pm-" + uuid.NewString()
	}
	if m.Name == "" {
		m.Name = m.ID
	}

	// Partition nodes into process steps and boundary elements.
	var stepNodes, boundaryNodes []graph.Node
	for _, n := range s.Nodes {
		if taxonomy.Boundary(n.Type) {
			boundaryNodes = append(boundaryNodes, n)
		} else {
			stepNodes = append(stepNodes, n)
		}
	}

	// Ports exist only because edges touch their owner. Synthesize
	// deterministic ids per edge endpoint and register each once.
	portsByStep := make(map[string][]model.Port)
	seenPorts := make(map[string]bool)
	isStep := make(map[string]bool, len(stepNodes))
	for _, n := range stepNodes {
		isStep[n.ID] = true
	}

	registerPort := func(nodeID, portID string, dir model.Direction, flow model.FlowType) {
		if !isStep[nodeID] || seenPorts[portID] {
			return
		}
		seenPorts[portID] = true
		portsByStep[nodeID] = append(portsByStep[nodeID], model.Port{
			ID:        portID,
			Name:      portName(portID, nodeID),
			Direction: dir,
			FlowType:  flow,
			StepID:    nodeID,
		})
	}

	for _, e := range s.Edges {
		flow := edgeFlowType(e)
		registerPort(e.Source, PortID(e.Source, model.DirectionOutlet, e.SourceHandle), model.DirectionOutlet, flow)
		registerPort(e.Target, PortID(e.Target, model.DirectionInlet, e.TargetHandle), model.DirectionInlet, flow)
	}

	// Process steps.
	for _, n := range stepNodes {
		step, ws := exportStep(n, portsByStep[n.ID], opts.Mode)
		warnings = append(warnings, ws...)
		m.Steps = append(m.Steps, step)
	}

	// Boundary nodes become external ports. Direction falls back to a
	// positional heuristic relative to the diagram's horizontal midline.
	bounds, _ := graph.BoundingBox(s.Nodes, nil)
	for _, n := range boundaryNodes {
		m.ExternalPorts = append(m.ExternalPorts, exportExternalPort(n, bounds))
	}

	// Connections.
	for _, e := range s.Edges {
		conn, ws := exportConnection(e)
		warnings = append(warnings, ws...)
		m.Connections = append(m.Connections, conn)
	}

	return &model.Document{SchemaVersion: model.SchemaVersion, Model: m}, warnings
}

// PortID synthesizes the deterministic port id for a node endpoint:
// {nodeID}_out_{handle} or {nodeID}_in_{handle}, with "default" standing in
// for an unnamed handle.
func PortID(nodeID string, dir model.Direction, handle string) string {
	if handle == "" {
		handle = "default"
	}
	infix := "in"
	if dir == model.DirectionOutlet {
		infix = "out"
	}
	return fmt.Sprintf("%s_%s_%s", nodeID, infix, handle)
}

func portName(portID, nodeID string) string {
	return strings.TrimPrefix(portID, nodeID+"_")
}

func exportStep(n graph.Node, ports []model.Port, mode graph.Mode) (model.ProcessStep, []string) {
	var warnings []string

	class, ok := taxonomy.ClassFor(n.Type)
	if !ok {
		class = taxonomy.FallbackClass(mode)
		warnings = append(warnings, fmt.Sprintf(
			"node %s: unsupported type %q, exported as %s", n.ID, n.Type, class))
	}

	step := model.ProcessStep{
		ID:                  n.ID,
		Type:                class,
		Name:                n.DisplayLabel(),
		Description:         n.Description,
		Ports:               ports,
		Layout:              nodeLayout(n),
		OriginalElementType: n.Type,
	}

	for _, key := range sortedPropertyKeys(n.Properties) {
		if key == graph.PropStream || key == graph.PropDirection {
			continue
		}
		step.Parameters = append(step.Parameters, parameterFromProperty(key, n.Properties[key]))
	}

	return step, warnings
}

func exportExternalPort(n graph.Node, bounds graph.Bounds) model.ExternalPort {
	dir := model.DirectionInlet
	switch strings.ToLower(n.Property(graph.PropDirection)) {
	case "outlet", "out":
		dir = model.DirectionOutlet
	case "inlet", "in":
		dir = model.DirectionInlet
	default:
		// Positional heuristic: boundary nodes right of the midline feed
		// outward. Scale-dependent; explicit direction properties win.
		if n.X > bounds.MidX() {
			dir = model.DirectionOutlet
		}
	}

	flow := model.ParseFlowType(n.Property(graph.PropStream))
	return model.ExternalPort{
		ID:        n.ID,
		Name:      n.DisplayLabel(),
		Direction: dir,
		FlowType:  flow,
		Layout:    nodeLayout(n),
	}
}

func exportConnection(e graph.Edge) (model.ProcessConnection, []string) {
	var warnings []string

	class, native := taxonomy.ConnectionClassFor(e.Type)
	if !native {
		warnings = append(warnings, fmt.Sprintf(
			"edge %s: unsupported type %q, exported as %s", e.ID, e.Type, class))
	}

	id := e.ID
	if id == "" {
		id = "conn-" + uuid.NewString()
	}

	conn := model.ProcessConnection{
		ID:                  id,
		Type:                class,
		FromPort:            PortID(e.Source, model.DirectionOutlet, e.SourceHandle),
		ToPort:              PortID(e.Target, model.DirectionInlet, e.TargetHandle),
		FlowType:            edgeFlowType(e),
		Label:               e.Label,
		Stream:              streamFromProperties(e.Properties),
		OriginalElementType: e.Type,
	}
	return conn, warnings
}

// edgeFlowType resolves the flow an edge carries: the explicit stream
// property wins, else the flow implied by the edge's connection class.
// A connection and the ports synthesized for it use the same resolution.
func edgeFlowType(e graph.Edge) model.FlowType {
	if s := e.Property(graph.PropStream); s != "" {
		return model.ParseFlowType(s)
	}
	class, _ := taxonomy.ConnectionClassFor(e.Type)
	return taxonomy.FlowTypeFor(class)
}

// streamFromProperties lifts the well-known stream quantities out of an
// edge's property map. Values are "<value> <unit>" strings or bare numbers.
func streamFromProperties(props map[string]string) *model.StreamProperties {
	s := &model.StreamProperties{
		FlowRate:    quantityFromString(props["flowRate"]),
		Temperature: quantityFromString(props["temperature"]),
		Pressure:    quantityFromString(props["pressure"]),
	}
	if s.Empty() {
		return nil
	}
	return s
}

// quantityFromString parses "100 kg/hr" or "100" into a quantity.
// Non-numeric strings yield nil.
func quantityFromString(s string) *model.Quantity {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return nil
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	q := &model.Quantity{Value: v}
	if len(fields) == 2 {
		q.Unit = fields[1]
	}
	return q
}

// parameterFromProperty converts one node property into a parameter,
// splitting "<value> <unit>" strings into value/unit pairs.
func parameterFromProperty(name, value string) model.Parameter {
	fields := strings.Fields(value)
	if len(fields) == 2 {
		if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return model.Parameter{Name: name, Value: fields[0], Unit: fields[1]}
		}
	}
	return model.Parameter{Name: name, Value: value}
}

func nodeLayout(n graph.Node) *model.Layout {
	return &model.Layout{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

func sortedPropertyKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic parameter order keeps exports reproducible.
	slices.Sort(keys)
	return keys
}
