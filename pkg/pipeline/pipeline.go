// Package pipeline provides the core conversion pipeline for Flowsheet.
//
// This package implements the complete detect → parse → build pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline runs in one of three directions:
//
//  1. Export: Build an interchange document from a diagram snapshot and
//     serialize it to XML
//  2. Import: Detect the schema dialect, parse the XML, and build a
//     diagram snapshot
//  3. Validate: Check interchange XML without producing a snapshot
//
// # Usage
//
// Create a Runner and execute a conversion:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{Mode: "pfd", Name: "Ammonia loop"}
//	result, err := runner.Export(snapshot, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml := result.XML
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/skarven/flowsheet/pkg/errors"
	"github.com/skarven/flowsheet/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMode is the diagram mode assumed when none is given.
const DefaultMode = graph.ModeProcess

// Format constants for interchange dialects.
const (
	FormatCurrent = "current"
	FormatLegacy  = "legacy"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a conversion run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Export options
	Mode        string `json:"mode,omitempty"`
	ModelID     string `json:"model_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ExportResult contains the outputs of an export run.
type ExportResult struct {
	// XML is the serialized interchange document.
	XML string

	// Warnings lists every degradation recorded while building the document.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats
}

// ImportResult contains the outputs of an import run.
type ImportResult struct {
	// Snapshot is the diagram built from the document.
	Snapshot graph.Snapshot

	// Mode is the diagram mode the snapshot was built for.
	Mode graph.Mode

	// Format names the dialect the input was written in ("current" or
	// "legacy"), with the declared schema version when one was present.
	Format  string
	Version string

	// Warnings lists every fallback recorded while parsing and building.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats
}

// ValidateResult contains the outputs of a validation run.
type ValidateResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	BuildTime  time.Duration
	EncodeTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// DiagramMode resolves the configured mode, falling back to the default.
func (o *Options) DiagramMode() graph.Mode {
	if o.Mode == "" {
		return DefaultMode
	}
	return graph.ParseMode(o.Mode)
}

// =============================================================================
// Validation Functions
// =============================================================================

// validModes is the set of mode spellings accepted on the pipeline surface.
// graph.ParseMode is lenient; the pipeline rejects typos up front instead of
// silently converting as a pfd.
var validModes = map[string]bool{
	"":           true,
	"block":      true,
	"bfd":        true,
	"pfd":        true,
	"process":    true,
	"pid":        true,
	"p&id":       true,
	"instrument": true,
}

// ValidateMode checks that a mode string is valid.
func ValidateMode(mode string) error {
	if !validModes[strings.ToLower(strings.TrimSpace(mode))] {
		return errors.New(errors.ErrCodeInvalidMode,
			"invalid mode: %q (must be one of: block, pfd, pid)", mode)
	}
	return nil
}
