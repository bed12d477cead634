// Package model defines the interchange document model.
//
// A [Document] is the in-memory form of one process-engineering interchange
// file, independent of which XML dialect (current or legacy 1.x) it came
// from or will be written to. All entities are constructed fresh per
// conversion call and never persisted.
//
// Types in this model use taxonomy class names (e.g. "Reactor",
// "MaterialFlow"), not the diagram's own element-type strings. The optional
// OriginalElementType fields are the round-trip anchor: they carry the
// diagram type verbatim and take precedence over taxonomy-derived types on
// reimport when still valid for the target mode.
package model

import "github.com/skarven/flowsheet/pkg/graph"

// SchemaVersion is the version stamped on documents written in the current
// dialect.
const SchemaVersion = "2.0"

// =============================================================================
// Document
// =============================================================================

// Document is one interchange document: a schema version and a single
// process model.
type Document struct {
	SchemaVersion string
	Model         ProcessModel
}

// ProcessModel is the root content of a document.
//
// Invariant: step IDs and port IDs are unique within the model.
type ProcessModel struct {
	ID            string
	Name          string
	Description   string
	DiagramType   graph.Mode
	Steps         []ProcessStep
	Connections   []ProcessConnection
	ExternalPorts []ExternalPort
	Metadata      map[string]string
}

// Step returns the step with the given ID, or nil if absent.
func (m *ProcessModel) Step(id string) *ProcessStep {
	for i := range m.Steps {
		if m.Steps[i].ID == id {
			return &m.Steps[i]
		}
	}
	return nil
}

// =============================================================================
// Steps and Ports
// =============================================================================

// ProcessStep is one unit operation or equipment item.
type ProcessStep struct {
	ID          string
	Type        string // taxonomy class name
	Name        string
	Description string
	Ports       []Port
	Parameters  []Parameter
	Layout      *Layout

	// OriginalElementType is the diagram's own type string, preserved for
	// round-trip fidelity. Empty for documents produced by other tools.
	OriginalElementType string
}

// Port returns the port with the given ID, or nil if absent.
func (s *ProcessStep) Port(id string) *Port {
	for i := range s.Ports {
		if s.Ports[i].ID == id {
			return &s.Ports[i]
		}
	}
	return nil
}

// Direction of a port relative to its owning step.
type Direction string

// Port directions.
const (
	DirectionInlet  Direction = "inlet"
	DirectionOutlet Direction = "outlet"
)

// FlowType classifies what a port or connection carries.
type FlowType string

// Flow types.
const (
	FlowMaterial    FlowType = "material"
	FlowEnergy      FlowType = "energy"
	FlowUtility     FlowType = "utility"
	FlowInformation FlowType = "information"
)

// ParseFlowType maps a free-form string to a FlowType, defaulting to
// material for unrecognized input.
func ParseFlowType(s string) FlowType {
	switch FlowType(s) {
	case FlowEnergy, FlowUtility, FlowInformation:
		return FlowType(s)
	default:
		return FlowMaterial
	}
}

// Port is a typed, directional connection point owned by a step.
// Ports exist only as a side effect of building connectivity; they are
// never created independent of a step.
type Port struct {
	ID        string
	Name      string
	Direction Direction
	FlowType  FlowType
	StepID    string // owning step
}

// ExternalPort is a boundary node: it acts both as a port and as a
// graph-visible element (feed or product crossing the battery limit).
type ExternalPort struct {
	ID        string
	Name      string
	Direction Direction
	FlowType  FlowType
	Layout    *Layout
}

// =============================================================================
// Connections
// =============================================================================

// ProcessConnection is one directed stream between two ports.
type ProcessConnection struct {
	ID       string
	Type     string // taxonomy class name, e.g. "MaterialFlow"
	FromPort string
	ToPort   string
	FlowType FlowType
	Label    string
	Stream   *StreamProperties

	// OriginalElementType preserves the diagram's edge type for round trips.
	OriginalElementType string
}

// StreamProperties carries the common engineering quantities of a stream.
// All fields are optional.
type StreamProperties struct {
	FlowRate    *Quantity
	Temperature *Quantity
	Pressure    *Quantity
}

// Empty reports whether no quantity is set.
func (s *StreamProperties) Empty() bool {
	return s == nil || (s.FlowRate == nil && s.Temperature == nil && s.Pressure == nil)
}

// Quantity is a numeric value with an optional unit.
type Quantity struct {
	Value float64
	Unit  string
}

// =============================================================================
// Parameters and Layout
// =============================================================================

// Parameter is one named value attached to a step, with an optional unit.
type Parameter struct {
	Name  string
	Value string
	Unit  string
}

// Layout is a position (and optional size) in the document's coordinate
// system: larger units, vertical axis increasing upward.
type Layout struct {
	X float64
	Y float64
	W float64 // 0 = unset
	H float64 // 0 = unset
}
