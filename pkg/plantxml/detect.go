package plantxml

import (
	"strings"

	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/procxml"
	"github.com/skarven/flowsheet/pkg/xmltree"
)

// Root element identity of the legacy 1.x dialect.
const (
	// RootName is the root element of legacy documents.
	RootName = "PlantModel"
	// DefaultVersion is assumed when a legacy document declares none.
	DefaultVersion = "1.0"
)

// FormatKind identifies which dialect a document is written in.
type FormatKind string

// Dialects.
const (
	FormatCurrent FormatKind = "current"
	FormatLegacy  FormatKind = "legacy"
)

// Format is the result of dialect detection.
type Format struct {
	Kind FormatKind

	// Version is the schema version the document declares.
	Version string

	// Discipline is the legacy discipline attribute ("PID", "PFD", "BFD"),
	// empty when undeclared or for current-schema documents.
	Discipline string
}

// Detect inspects the root element of an interchange document and reports
// its dialect. Malformed XML and unrecognized roots are fatal.
func Detect(data []byte) (Format, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return Format{}, errors.Wrap(errors.ErrCodeFatalParse, err, "detect document format")
	}
	return DetectTree(root)
}

// DetectTree is Detect over an already-parsed element tree.
func DetectTree(root *xmltree.Element) (Format, error) {
	switch {
	case strings.EqualFold(root.Name, procxml.RootName):
		return Format{Kind: FormatCurrent, Version: root.Attr("version")}, nil
	case strings.EqualFold(root.Name, RootName):
		f := Format{
			Kind:       FormatLegacy,
			Version:    root.Attr("Version"),
			Discipline: root.Attr("Discipline"),
		}
		if f.Version == "" {
			f.Version = DefaultVersion
		}
		return f, nil
	default:
		return Format{}, errors.New(errors.ErrCodeFatalParse,
			"unrecognized root element %q (want %s or %s)", root.Name, procxml.RootName, RootName)
	}
}
