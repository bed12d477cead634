package plantxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/taxonomy"
	"github.com/skarven/flowsheet/pkg/xmltree"
)

// =============================================================================
// Legacy XML → Document
// =============================================================================

// Parse reads a legacy 1.x document into the shared document model.
//
// Malformed XML or a wrong root element is fatal. Missing plant-information
// metadata, unknown equipment classes, and other recoverable defects
// degrade into warnings.
func Parse(data []byte) (*model.Document, []string, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFatalParse, err, "parse legacy document")
	}
	return ParseTree(root)
}

// ParseTree is Parse over an already-parsed element tree.
func ParseTree(root *xmltree.Element) (*model.Document, []string, error) {
	format, err := DetectTree(root)
	if err != nil {
		return nil, nil, err
	}
	if format.Kind != FormatLegacy {
		return nil, nil, errors.New(errors.ErrCodeFatalParse,
			"not a legacy document (root %q)", root.Name)
	}

	var warnings []string
	doc := &model.Document{SchemaVersion: format.Version}

	mode := classifyDiagramType(root, format.Discipline, &warnings)
	m := model.ProcessModel{
		ID:          root.Attr("ID"),
		Name:        root.Attr("Name"),
		DiagramType: mode,
	}
	if m.ID == "" {
		m.ID = "plant-model"
	}
	if m.Name == "" {
		m.Name = m.ID
	}

	if info := root.Child("PlantInformation"); info != nil {
		m.Metadata = make(map[string]string, len(info.Attrs))
		for _, a := range info.Attrs {
			m.Metadata[a.Name] = a.Value
		}
	} else {
		warnings = append(warnings, "legacy document has no PlantInformation element")
	}

	for i, eq := range root.ChildrenNamed("Equipment") {
		m.Steps = append(m.Steps, parseEquipment(eq, i, mode, &warnings))
	}

	connIndex := 0
	for _, pns := range root.ChildrenNamed("PipingNetworkSystem") {
		parsePipingNetwork(pns, &m, &connIndex, &warnings)
	}

	doc.Model = m
	return doc, warnings, nil
}

// =============================================================================
// Equipment
// =============================================================================

func parseEquipment(eq *xmltree.Element, index int, mode graph.Mode, warnings *[]string) model.ProcessStep {
	id := eq.Attr("ID")
	if id == "" {
		// Positional fallback keeps connectivity resolvable.
		id = fmt.Sprintf("equipment-%d", index+1)
		*warnings = append(*warnings, fmt.Sprintf("equipment %d has no ID; using %q", index+1, id))
	}

	class := eq.Attr("ComponentClass")
	if _, known := taxonomy.ElementType(class, mode); !known {
		*warnings = append(*warnings, fmt.Sprintf(
			"equipment %s: unknown class %q, using %s", id, class, taxonomy.FallbackClass(mode)))
		class = taxonomy.FallbackClass(mode)
	}

	name := eq.Attr("TagName")
	if name == "" {
		name = class
	}

	step := model.ProcessStep{
		ID:     id,
		Type:   class,
		Name:   name,
		Layout: parsePosition(eq),
	}

	for _, nozzle := range eq.ChildrenNamed("Nozzle") {
		step.Ports = append(step.Ports, parseNozzle(nozzle, &step))
	}

	if attrs := eq.Child("GenericAttributes"); attrs != nil {
		for _, a := range attrs.ChildrenNamed("GenericAttribute") {
			if p, ok := parseGenericAttribute(a); ok {
				step.Parameters = append(step.Parameters, p)
			}
		}
	}

	return step
}

func parseNozzle(nozzle *xmltree.Element, step *model.ProcessStep) model.Port {
	id := nozzle.Attr("ID")
	if id == "" {
		id = fmt.Sprintf("%s-nozzle-%d", step.ID, len(step.Ports)+1)
	}
	name := nozzle.Attr("Name")
	if name == "" {
		name = id
	}
	return model.Port{
		ID:        id,
		Name:      name,
		Direction: nozzleDirection(nozzle.Attr("Direction"), name, id),
		FlowType:  model.FlowMaterial,
		StepID:    step.ID,
	}
}

// nozzleDirection resolves a port direction from the explicit flag when
// present, else from naming conventions, defaulting to inlet.
func nozzleDirection(explicit, name, id string) model.Direction {
	switch strings.ToLower(explicit) {
	case "out", "outlet", "discharge":
		return model.DirectionOutlet
	case "in", "inlet", "suction":
		return model.DirectionInlet
	}
	for _, marker := range []string{"out", "discharge", "exit"} {
		if strings.Contains(strings.ToLower(name), marker) || strings.Contains(strings.ToLower(id), marker) {
			return model.DirectionOutlet
		}
	}
	return model.DirectionInlet
}

// parseGenericAttribute converts one generic attribute into a parameter.
// Numeric-looking values are coerced to a canonical form, attribute names
// are de-suffixed, and "<value> <unit>" strings are split.
func parseGenericAttribute(a *xmltree.Element) (model.Parameter, bool) {
	name := strings.TrimSpace(a.Attr("Name"))
	if name == "" {
		return model.Parameter{}, false
	}
	name = strings.TrimSuffix(name, "Value")
	name = strings.TrimSuffix(name, "Attribute")

	value := strings.TrimSpace(a.Attr("Value"))
	unit := strings.TrimSpace(a.Attr("Units"))

	if unit == "" {
		if v, u, ok := splitValueUnit(value); ok {
			value, unit = v, u
		}
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		value = strconv.FormatFloat(f, 'f', -1, 64)
	}

	return model.Parameter{Name: name, Value: value, Unit: unit}, true
}

// splitValueUnit splits strings like "100 kg/hr" into value and unit.
func splitValueUnit(s string) (value, unit string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", false
	}
	if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
		return "", "", false
	}
	return fields[0], fields[1], true
}

func parsePosition(el *xmltree.Element) *model.Layout {
	pos := el.Child("Position")
	if pos == nil {
		return nil
	}
	x, errX := strconv.ParseFloat(pos.Attr("X"), 64)
	y, errY := strconv.ParseFloat(pos.Attr("Y"), 64)
	if errX != nil && errY != nil {
		return nil
	}
	l := &model.Layout{X: x, Y: y}
	if w, err := strconv.ParseFloat(pos.Attr("Width"), 64); err == nil {
		l.W = w
	}
	if h, err := strconv.ParseFloat(pos.Attr("Height"), 64); err == nil {
		l.H = h
	}
	return l
}

// =============================================================================
// Piping Networks
// =============================================================================

// Boundary connector class markers. A connector whose class contains one of
// these substrings becomes an external port of the matching direction.
const (
	markerFlowIn  = "flowin"
	markerFlowOut = "flowout"
)

func parsePipingNetwork(pns *xmltree.Element, m *model.ProcessModel, connIndex *int, warnings *[]string) {
	// Connections may sit directly under the network or inside segments.
	segments := pns.ChildrenNamed("PipingNetworkSegment")
	if len(segments) == 0 {
		segments = []*xmltree.Element{pns}
	}
	for _, seg := range segments {
		for _, conn := range seg.ChildrenNamed("Connection") {
			*connIndex++
			m.Connections = append(m.Connections, parseConnection(conn, *connIndex))
		}
	}

	for _, bc := range pns.ChildrenNamed("BoundaryConnector") {
		if port, ok := parseBoundaryConnector(bc, len(m.ExternalPorts)); ok {
			m.ExternalPorts = append(m.ExternalPorts, port)
		} else {
			*warnings = append(*warnings, fmt.Sprintf(
				"boundary connector %q has no flow direction marker; skipped", bc.Attr("ID")))
		}
	}
}

func parseConnection(conn *xmltree.Element, index int) model.ProcessConnection {
	id := conn.Attr("ID")
	if id == "" {
		id = fmt.Sprintf("connection-%d", index)
	}

	from := conn.Attr("FromNode")
	if from == "" {
		from = conn.Attr("FromID")
	}
	to := conn.Attr("ToNode")
	if to == "" {
		to = conn.Attr("ToID")
	}

	return model.ProcessConnection{
		ID:       id,
		Type:     taxonomy.ClassMaterialFlow,
		FromPort: from,
		ToPort:   to,
		FlowType: model.FlowMaterial,
		Label:    conn.Attr("TagName"),
	}
}

func parseBoundaryConnector(bc *xmltree.Element, index int) (model.ExternalPort, bool) {
	class := strings.ToLower(bc.Attr("ComponentClass"))

	var dir model.Direction
	switch {
	case strings.Contains(class, markerFlowIn):
		dir = model.DirectionInlet
	case strings.Contains(class, markerFlowOut):
		dir = model.DirectionOutlet
	default:
		return model.ExternalPort{}, false
	}

	id := bc.Attr("ID")
	if id == "" {
		id = fmt.Sprintf("boundary-%d", index+1)
	}
	name := bc.Attr("TagName")
	if name == "" {
		name = id
	}

	return model.ExternalPort{
		ID:        id,
		Name:      name,
		Direction: dir,
		FlowType:  model.FlowMaterial,
		Layout:    parsePosition(bc),
	}, true
}

// =============================================================================
// Diagram Type Classification
// =============================================================================

// classifyDiagramType picks the diagram mode for a legacy document.
// The explicit Discipline attribute wins; otherwise the presence of nozzles
// or detailed (valve/instrument) equipment classes implies the
// highest-detail mode, and anything else the simplest.
func classifyDiagramType(root *xmltree.Element, discipline string, warnings *[]string) graph.Mode {
	switch strings.ToUpper(strings.TrimSpace(discipline)) {
	case "PID", "P&ID":
		return graph.ModeInstrument
	case "PFD":
		return graph.ModeProcess
	case "BFD", "BLOCK":
		return graph.ModeBlock
	}

	for _, eq := range root.ChildrenNamed("Equipment") {
		if len(eq.ChildrenNamed("Nozzle")) > 0 {
			*warnings = append(*warnings, "no discipline declared; classified as pid from equipment detail")
			return graph.ModeInstrument
		}
		if cat, ok := taxonomy.Category(eq.Attr("ComponentClass")); ok && (cat == "valve" || cat == "instrument") {
			*warnings = append(*warnings, "no discipline declared; classified as pid from equipment detail")
			return graph.ModeInstrument
		}
	}

	*warnings = append(*warnings, "no discipline declared; classified as block diagram")
	return graph.ModeBlock
}
