// Package validate performs structural checks on interchange documents.
//
// Checks are split into fatal errors (malformed XML, wrong root, missing
// ProcessModel, missing or duplicate step ids) and non-fatal warnings
// (dangling port references, diagram modes without a native interchange
// representation). The result carries both lists for the caller's UI; the
// converter itself never consults it.
package validate

import (
	"fmt"
	"regexp"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/plantxml"
	"github.com/skarven/flowsheet/pkg/procxml"
	"github.com/skarven/flowsheet/pkg/xmltree"
)

// Result is the outcome of a validation run.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CheckText validates raw interchange XML: well-formedness, root identity,
// then the document-level checks of [CheckDocument] for whichever dialect
// the text is written in.
func CheckText(data []byte) Result {
	r := Result{Valid: true}

	root, err := xmltree.Parse(data)
	if err != nil {
		r.errorf("%v", err)
		return r
	}

	format, err := plantxml.DetectTree(root)
	if err != nil {
		r.errorf("%v", err)
		return r
	}

	var doc *model.Document
	var warnings []string
	switch format.Kind {
	case plantxml.FormatLegacy:
		doc, warnings, err = plantxml.ParseTree(root)
	default:
		doc, warnings, err = procxml.ParseTree(root)
	}
	if err != nil {
		r.errorf("%v", err)
		return r
	}
	r.Warnings = append(r.Warnings, warnings...)

	docResult := CheckDocument(doc)
	r.Errors = append(r.Errors, docResult.Errors...)
	r.Warnings = append(r.Warnings, docResult.Warnings...)
	r.Valid = r.Valid && docResult.Valid
	return r
}

// CheckDocument validates a parsed document: model presence, step id
// presence and uniqueness, port id uniqueness (warning), dangling port
// references (warning, not error), and mode-appropriateness.
func CheckDocument(doc *model.Document) Result {
	r := Result{Valid: true}
	if doc == nil {
		r.errorf("document has no process model")
		return r
	}
	m := &doc.Model

	if m.ID == "" {
		r.warnf("process model has no id")
	}

	seen := make(map[string]bool, len(m.Steps))
	for i := range m.Steps {
		step := &m.Steps[i]
		if step.ID == "" {
			r.errorf("step %d has no id", i+1)
			continue
		}
		if seen[step.ID] {
			r.errorf("duplicate step id %q", step.ID)
		}
		seen[step.ID] = true
	}

	// Ports and external ports share one id namespace.
	seenPorts := make(map[string]bool)
	checkPortID := func(id string) {
		if id == "" {
			return
		}
		if seenPorts[id] {
			r.warnf("duplicate port id %q", id)
		}
		seenPorts[id] = true
	}
	for i := range m.Steps {
		for j := range m.Steps[i].Ports {
			checkPortID(m.Steps[i].Ports[j].ID)
		}
	}
	for i := range m.ExternalPorts {
		checkPortID(m.ExternalPorts[i].ID)
	}

	known := knownPortIDs(m)
	for i := range m.Connections {
		conn := &m.Connections[i]
		checkPortRef(&r, conn.ID, "from", conn.FromPort, known)
		checkPortRef(&r, conn.ID, "to", conn.ToPort, known)
	}

	r.Warnings = append(r.Warnings, ModeSupport(m.DiagramType)...)
	return r
}

// ModeSupport reports semantic warnings for modes without a native
// interchange representation. Export proceeds regardless; callers surface
// the warning.
func ModeSupport(mode graph.Mode) []string {
	if mode == graph.ModeBlock {
		return []string{
			"block flow diagrams have no native interchange representation; generic process-step classes are used",
		}
	}
	return nil
}

// portPattern mirrors the import builder's fallback: a dangling reference
// that still encodes a node id resolves, so it warrants a warning rather
// than an error.
var portPattern = regexp.MustCompile(`^(.+)_(?:in|out)_([^_]+)$`)

func checkPortRef(r *Result, connID, side, ref string, known map[string]bool) {
	if ref == "" {
		r.errorf("connection %s has no %s port", connID, side)
		return
	}
	if known[ref] {
		return
	}
	if portPattern.MatchString(ref) {
		r.warnf("connection %s: %s port %q is not declared; resolvable by pattern", connID, side, ref)
		return
	}
	r.warnf("connection %s: %s port %q is dangling", connID, side, ref)
}

func knownPortIDs(m *model.ProcessModel) map[string]bool {
	known := make(map[string]bool)
	for i := range m.Steps {
		known[m.Steps[i].ID] = true
		for j := range m.Steps[i].Ports {
			known[m.Steps[i].Ports[j].ID] = true
		}
	}
	for i := range m.ExternalPorts {
		id := m.ExternalPorts[i].ID
		known[id] = true
		known[id+"_in_default"] = true
		known[id+"_out_default"] = true
	}
	return known
}
