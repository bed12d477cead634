// Package cli implements the flowsheet command-line interface.
//
// This package provides commands for converting process diagrams to and
// from interchange XML, validating interchange documents, and serving the
// conversion API over HTTP. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - export: Convert a diagram snapshot to interchange XML
//   - import: Convert interchange XML (current or legacy schema) to a diagram
//   - validate: Check an interchange document without converting it
//   - inspect: Browse the steps of an interchange document interactively
//   - serve: Run the conversion HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Structured
// progress output goes to stderr so piped XML stays clean on stdout.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/skarven/flowsheet/pkg/buildinfo"
	"github.com/skarven/flowsheet/pkg/pipeline"
	"github.com/skarven/flowsheet/pkg/taxonomy"
)

// appName is the application name used for display.
const appName = "flowsheet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var taxonomyPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowsheet converts process diagrams to and from interchange XML",
		Long:         `Flowsheet is a CLI tool for converting interactive process diagrams (block flow, PFD, P&ID) to process-engineering interchange XML and back, supporting both the current generic schema and the legacy equipment schema.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if taxonomyPath == "" {
				return nil
			}
			return taxonomy.LoadConfig(taxonomyPath)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&taxonomyPath, "taxonomy", "", "custom taxonomy table (TOML, replaces the built-in one)")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// I/O Helpers
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// readInput reads the given path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
