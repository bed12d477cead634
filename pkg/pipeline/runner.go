package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/skarven/flowsheet/pkg/convert"
	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/plantxml"
	"github.com/skarven/flowsheet/pkg/procxml"
	"github.com/skarven/flowsheet/pkg/validate"
	"github.com/skarven/flowsheet/pkg/xmltree"
)

// Runner encapsulates conversion execution. Both CLI and API use this to
// avoid duplicating dispatch and logging.
//
// The Runner is stateless except for the logger - it doesn't store
// conversion results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner with the given logger.
// If logger is nil, the package default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Export builds an interchange document from a diagram snapshot and
// serializes it.
//
// Export never fails on diagram content: unsupported types degrade to
// generic classes with warnings. The only errors are invalid options.
func (r *Runner) Export(s graph.Snapshot, opts Options) (*ExportResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &ExportResult{}
	result.Stats.NodeCount = len(s.Nodes)
	result.Stats.EdgeCount = len(s.Edges)

	mode := opts.DiagramMode()
	result.Warnings = append(result.Warnings, validate.ModeSupport(mode)...)

	// Stage 1: Build
	buildStart := time.Now()
	doc, warnings := convert.Export(s, convert.ExportOptions{
		Mode:        mode,
		ModelID:     opts.ModelID,
		Name:        opts.Name,
		Description: opts.Description,
	})
	result.Warnings = append(result.Warnings, warnings...)
	result.Stats.BuildTime = time.Since(buildStart)

	opts.Logger.Info("built document",
		"steps", len(doc.Model.Steps),
		"connections", len(doc.Model.Connections),
		"externalPorts", len(doc.Model.ExternalPorts),
		"duration", result.Stats.BuildTime)

	// Stage 2: Encode
	encodeStart := time.Now()
	result.XML = procxml.Encode(doc)
	result.Stats.EncodeTime = time.Since(encodeStart)

	opts.Logger.Info("encoded document",
		"bytes", len(result.XML),
		"warnings", len(result.Warnings),
		"duration", result.Stats.EncodeTime)

	return result, nil
}

// Import detects the interchange dialect, parses the XML, and builds a
// diagram snapshot.
//
// Import fails only on fatal parse errors (malformed XML, unrecognized
// root). Everything else degrades into the result's warnings list.
func (r *Runner) Import(data []byte, opts Options) (*ImportResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &ImportResult{}

	// Stage 1: Detect + parse
	parseStart := time.Now()
	doc, format, warnings, err := parseAny(data)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warnings...)
	result.Version = format.Version
	result.Format = FormatCurrent
	if format.Kind == plantxml.FormatLegacy {
		result.Format = FormatLegacy
	}
	result.Stats.ParseTime = time.Since(parseStart)

	opts.Logger.Info("parsed document",
		"format", result.Format,
		"steps", len(doc.Model.Steps),
		"connections", len(doc.Model.Connections),
		"duration", result.Stats.ParseTime)

	// Stage 2: Build
	buildStart := time.Now()
	snapshot, mode, buildWarnings := convert.Import(doc)
	result.Snapshot = snapshot
	result.Mode = mode
	result.Warnings = append(result.Warnings, buildWarnings...)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(snapshot.Nodes)
	result.Stats.EdgeCount = len(snapshot.Edges)

	opts.Logger.Info("built diagram",
		"mode", mode,
		"nodes", len(snapshot.Nodes),
		"edges", len(snapshot.Edges),
		"warnings", len(result.Warnings),
		"duration", result.Stats.BuildTime)

	return result, nil
}

// Validate checks interchange XML without producing a snapshot.
func (r *Runner) Validate(data []byte) *ValidateResult {
	res := validate.CheckText(data)
	r.Logger.Info("validated document",
		"valid", res.Valid,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
	return &ValidateResult{Valid: res.Valid, Errors: res.Errors, Warnings: res.Warnings}
}

// ParseDocument detects the dialect of raw interchange XML and parses it
// into a document without building a diagram. Callers that want a snapshot
// should use Import instead.
func ParseDocument(data []byte) (*model.Document, []string, error) {
	doc, _, warnings, err := parseAny(data)
	return doc, warnings, err
}

// parseAny detects the dialect of raw interchange XML and parses it with
// the matching parser.
func parseAny(data []byte) (*model.Document, plantxml.Format, []string, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, plantxml.Format{}, nil, errors.Wrap(errors.ErrCodeFatalParse, err, "parse document")
	}
	format, err := plantxml.DetectTree(root)
	if err != nil {
		return nil, plantxml.Format{}, nil, err
	}

	var doc *model.Document
	var warnings []string
	switch format.Kind {
	case plantxml.FormatLegacy:
		doc, warnings, err = plantxml.ParseTree(root)
	case plantxml.FormatCurrent:
		doc, warnings, err = procxml.ParseTree(root)
	default:
		return nil, format, nil, errors.New(errors.ErrCodeFatalParse,
			"unrecognized document format")
	}
	if err != nil {
		return nil, format, nil, err
	}
	return doc, format, warnings, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
