package procxml

import (
	"strings"

	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/xmltree"
)

// =============================================================================
// XML → Document
// =============================================================================

// Parse reads current-schema XML text into a document.
//
// Malformed XML, a wrong root element, a wrong namespace, or a missing
// ProcessModel object are fatal. Everything else degrades: missing optional
// sections are treated as absence and recorded as warnings.
func Parse(data []byte) (*model.Document, []string, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFatalParse, err, "parse interchange document")
	}
	return ParseTree(root)
}

// ParseTree is Parse over an already-parsed element tree.
func ParseTree(root *xmltree.Element) (*model.Document, []string, error) {
	if !strings.EqualFold(root.Name, RootName) {
		return nil, nil, errors.New(errors.ErrCodeFatalParse,
			"unexpected root element %q (want %s)", root.Name, RootName)
	}
	if root.Space != "" && root.Space != Namespace {
		return nil, nil, errors.New(errors.ErrCodeFatalParse,
			"unexpected namespace %q (want %s)", root.Space, Namespace)
	}

	modelObj, ok := findProcessModel(root)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeFatalParse, "document has no ProcessModel object")
	}

	var warnings []string
	doc := &model.Document{SchemaVersion: root.Attr("version")}
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = model.SchemaVersion
		warnings = append(warnings, "document declares no version; assuming "+model.SchemaVersion)
	}

	doc.Model = parseModel(modelObj, &warnings)
	return doc, warnings, nil
}

// findProcessModel locates the single ProcessModel Object under the root.
func findProcessModel(root *xmltree.Element) (*Object, bool) {
	for _, child := range root.ChildrenNamed("Object") {
		obj := decodeObject(child)
		if strings.EqualFold(obj.Type, "ProcessModel") {
			return &obj, true
		}
	}
	return nil, false
}

func parseModel(obj *Object, warnings *[]string) model.ProcessModel {
	m := model.ProcessModel{
		ID:          obj.ID,
		Name:        obj.scalarData("Name"),
		Description: obj.scalarData("Description"),
	}

	if dt := obj.scalarData("DiagramType"); dt != "" {
		m.DiagramType = graph.ParseMode(dt)
	}

	if d, ok := obj.data("Metadata"); ok && d.Object != nil {
		m.Metadata = make(map[string]string, len(d.Object.Data))
		for i := range d.Object.Data {
			if v, ok := d.Object.Data[i].Scalar(); ok {
				m.Metadata[d.Object.Data[i].Name] = v
			}
		}
	}

	if steps, ok := obj.components("Steps"); ok {
		for i := range steps.Objects {
			m.Steps = append(m.Steps, parseStep(&steps.Objects[i]))
		}
	} else {
		*warnings = append(*warnings, "document has no steps section")
	}

	if conns, ok := obj.components("Connections"); ok {
		for i := range conns.Objects {
			m.Connections = append(m.Connections, parseConnection(&conns.Objects[i]))
		}
	}

	if ext, ok := obj.components("ExternalPorts"); ok {
		for i := range ext.Objects {
			m.ExternalPorts = append(m.ExternalPorts, parseExternalPort(&ext.Objects[i]))
		}
	}

	return m
}

func parseStep(obj *Object) model.ProcessStep {
	s := model.ProcessStep{
		ID:                  obj.ID,
		Type:                obj.Type,
		Name:                obj.scalarData("Name"),
		Description:         obj.scalarData("Description"),
		OriginalElementType: obj.scalarData("OriginalElementType"),
		Layout:              parseLayout(obj),
	}
	if s.Name == "" {
		s.Name = s.ID
	}

	if ports, ok := obj.components("Ports"); ok {
		for i := range ports.Objects {
			p := &ports.Objects[i]
			s.Ports = append(s.Ports, model.Port{
				ID:        p.ID,
				Name:      p.scalarData("Name"),
				Direction: parseDirection(p.scalarData("Direction")),
				FlowType:  model.ParseFlowType(p.scalarData("FlowType")),
				StepID:    s.ID,
			})
		}
	}

	if params, ok := obj.components("Parameters"); ok {
		for i := range params.Objects {
			p := &params.Objects[i]
			s.Parameters = append(s.Parameters, model.Parameter{
				Name:  p.scalarData("Name"),
				Value: p.scalarData("Value"),
				Unit:  p.scalarData("Unit"),
			})
		}
	}

	return s
}

// parseLayout reads the nested Layout object, falling back to the legacy
// flattened dot-notation encoding ("layout.x" leaves) when absent.
func parseLayout(obj *Object) *model.Layout {
	if d, ok := obj.data("Layout"); ok && d.Object != nil {
		l := &model.Layout{}
		l.X, _ = d.Object.doubleData("X")
		l.Y, _ = d.Object.doubleData("Y")
		l.W, _ = d.Object.doubleData("W")
		l.H, _ = d.Object.doubleData("H")
		return l
	}

	x, okX := obj.doubleData("Layout.X")
	y, okY := obj.doubleData("Layout.Y")
	if !okX && !okY {
		return nil
	}
	l := &model.Layout{X: x, Y: y}
	l.W, _ = obj.doubleData("Layout.W")
	l.H, _ = obj.doubleData("Layout.H")
	return l
}

func parseConnection(obj *Object) model.ProcessConnection {
	c := model.ProcessConnection{
		ID:                  obj.ID,
		Type:                obj.Type,
		FromPort:            obj.scalarData("FromPort"),
		ToPort:              obj.scalarData("ToPort"),
		Label:               obj.scalarData("Label"),
		OriginalElementType: obj.scalarData("OriginalElementType"),
	}
	if ft := obj.scalarData("FlowType"); ft != "" {
		c.FlowType = model.ParseFlowType(ft)
	} else {
		c.FlowType = model.FlowMaterial
	}
	c.Stream = parseStream(obj)
	return c
}

func parseStream(obj *Object) *model.StreamProperties {
	d, ok := obj.data("StreamProperties")
	if !ok || d.Object == nil {
		return nil
	}
	s := &model.StreamProperties{
		FlowRate:    parseQuantity(d.Object, "FlowRate"),
		Temperature: parseQuantity(d.Object, "Temperature"),
		Pressure:    parseQuantity(d.Object, "Pressure"),
	}
	if s.Empty() {
		return nil
	}
	return s
}

func parseQuantity(obj *Object, name string) *model.Quantity {
	d, ok := obj.data(name)
	if !ok || d.Object == nil {
		return nil
	}
	v, ok := d.Object.doubleData("Value")
	if !ok {
		return nil
	}
	return &model.Quantity{Value: v, Unit: d.Object.scalarData("Unit")}
}

func parseExternalPort(obj *Object) model.ExternalPort {
	p := model.ExternalPort{
		ID:        obj.ID,
		Name:      obj.scalarData("Name"),
		Direction: parseDirection(obj.scalarData("Direction")),
		FlowType:  model.ParseFlowType(obj.scalarData("FlowType")),
		Layout:    parseLayout(obj),
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p
}

func parseDirection(s string) model.Direction {
	if strings.EqualFold(s, string(model.DirectionOutlet)) || strings.EqualFold(s, "out") {
		return model.DirectionOutlet
	}
	return model.DirectionInlet
}
