package procxml

import (
	"fmt"
	"slices"
	"strings"

	"github.com/skarven/flowsheet/pkg/model"
)

// =============================================================================
// Document → XML
// =============================================================================

// Encode renders a document as current-schema XML text: a declaration, a
// namespace/version-stamped root, and one ProcessModel Object encoded with
// the generic grammar.
func Encode(doc *model.Document) string {
	version := doc.SchemaVersion
	if version == "" {
		version = model.SchemaVersion
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, "<%s xmlns=%q version=%q>\n", RootName, Namespace, version)
	obj := modelObject(&doc.Model)
	encodeObject(&sb, &obj, 1)
	fmt.Fprintf(&sb, "</%s>\n", RootName)
	return sb.String()
}

func modelObject(m *model.ProcessModel) Object {
	obj := Object{ID: m.ID, Type: "ProcessModel"}
	obj.Data = append(obj.Data, StringData("name", m.Name))
	if m.Description != "" {
		obj.Data = append(obj.Data, StringData("description", m.Description))
	}
	obj.Data = append(obj.Data, StringData("diagramType", string(m.DiagramType)))
	if len(m.Metadata) > 0 {
		obj.Data = append(obj.Data, ObjectData("metadata", metadataObject(m.ID, m.Metadata)))
	}

	steps := Components{Name: "steps"}
	for i := range m.Steps {
		steps.Objects = append(steps.Objects, stepObject(&m.Steps[i]))
	}
	connections := Components{Name: "connections"}
	for i := range m.Connections {
		connections.Objects = append(connections.Objects, connectionObject(&m.Connections[i]))
	}
	externals := Components{Name: "externalPorts"}
	for i := range m.ExternalPorts {
		externals.Objects = append(externals.Objects, externalPortObject(&m.ExternalPorts[i]))
	}
	obj.Components = append(obj.Components, steps, connections, externals)
	return obj
}

func metadataObject(ownerID string, meta map[string]string) Object {
	obj := Object{ID: ownerID + ".metadata", Type: "Metadata"}
	for _, key := range sortedKeys(meta) {
		obj.Data = append(obj.Data, StringData(key, meta[key]))
	}
	return obj
}

func stepObject(s *model.ProcessStep) Object {
	obj := Object{ID: s.ID, Type: s.Type}
	obj.Data = append(obj.Data, StringData("name", s.Name))
	if s.Description != "" {
		obj.Data = append(obj.Data, StringData("description", s.Description))
	}
	if s.OriginalElementType != "" {
		obj.Data = append(obj.Data, StringData("originalElementType", s.OriginalElementType))
	}
	if s.Layout != nil {
		obj.Data = append(obj.Data, ObjectData("layout", layoutObject(s.ID, s.Layout)))
	}

	if len(s.Ports) > 0 {
		ports := Components{Name: "ports"}
		for i := range s.Ports {
			ports.Objects = append(ports.Objects, portObject(&s.Ports[i]))
		}
		obj.Components = append(obj.Components, ports)
	}
	if len(s.Parameters) > 0 {
		params := Components{Name: "parameters"}
		for i := range s.Parameters {
			params.Objects = append(params.Objects, parameterObject(s.ID, i, &s.Parameters[i]))
		}
		obj.Components = append(obj.Components, params)
	}
	return obj
}

func layoutObject(ownerID string, l *model.Layout) Object {
	obj := Object{ID: ownerID + ".layout", Type: "Layout"}
	obj.Data = append(obj.Data, DoubleData("x", l.X), DoubleData("y", l.Y))
	if l.W != 0 {
		obj.Data = append(obj.Data, DoubleData("w", l.W))
	}
	if l.H != 0 {
		obj.Data = append(obj.Data, DoubleData("h", l.H))
	}
	return obj
}

func portObject(p *model.Port) Object {
	return Object{
		ID:   p.ID,
		Type: "Port",
		Data: []Data{
			StringData("name", p.Name),
			StringData("direction", string(p.Direction)),
			StringData("flowType", string(p.FlowType)),
		},
	}
}

func parameterObject(stepID string, i int, p *model.Parameter) Object {
	obj := Object{
		ID:   fmt.Sprintf("%s.param.%d", stepID, i),
		Type: "Parameter",
		Data: []Data{
			StringData("name", p.Name),
			StringData("value", p.Value),
		},
	}
	if p.Unit != "" {
		obj.Data = append(obj.Data, StringData("unit", p.Unit))
	}
	return obj
}

func connectionObject(c *model.ProcessConnection) Object {
	obj := Object{ID: c.ID, Type: c.Type}
	obj.Data = append(obj.Data,
		StringData("fromPort", c.FromPort),
		StringData("toPort", c.ToPort),
		StringData("flowType", string(c.FlowType)),
	)
	if c.Label != "" {
		obj.Data = append(obj.Data, StringData("label", c.Label))
	}
	if c.OriginalElementType != "" {
		obj.Data = append(obj.Data, StringData("originalElementType", c.OriginalElementType))
	}
	if !c.Stream.Empty() {
		obj.Data = append(obj.Data, ObjectData("streamProperties", streamObject(c.ID, c.Stream)))
	}
	return obj
}

func streamObject(ownerID string, s *model.StreamProperties) Object {
	obj := Object{ID: ownerID + ".stream", Type: "StreamProperties"}
	if s.FlowRate != nil {
		obj.Data = append(obj.Data, ObjectData("flowRate", quantityObject(ownerID+".flowRate", s.FlowRate)))
	}
	if s.Temperature != nil {
		obj.Data = append(obj.Data, ObjectData("temperature", quantityObject(ownerID+".temperature", s.Temperature)))
	}
	if s.Pressure != nil {
		obj.Data = append(obj.Data, ObjectData("pressure", quantityObject(ownerID+".pressure", s.Pressure)))
	}
	return obj
}

func quantityObject(id string, q *model.Quantity) Object {
	obj := Object{ID: id, Type: "Quantity"}
	obj.Data = append(obj.Data, DoubleData("value", q.Value))
	if q.Unit != "" {
		obj.Data = append(obj.Data, StringData("unit", q.Unit))
	}
	return obj
}

func externalPortObject(p *model.ExternalPort) Object {
	obj := Object{ID: p.ID, Type: "ExternalPort"}
	obj.Data = append(obj.Data,
		StringData("name", p.Name),
		StringData("direction", string(p.Direction)),
		StringData("flowType", string(p.FlowType)),
	)
	if p.Layout != nil {
		obj.Data = append(obj.Data, ObjectData("layout", layoutObject(p.ID, p.Layout)))
	}
	return obj
}

// sortedKeys returns map keys in sorted order for deterministic output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
