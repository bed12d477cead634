package cli

import (
	"github.com/spf13/cobra"

	"github.com/skarven/flowsheet/pkg/graph"
	"github.com/skarven/flowsheet/pkg/pipeline"
)

// importOpts holds the command-line flags for the import command.
type importOpts struct {
	output string // output file path (stdout if empty)
}

// importCommand creates the import command for converting interchange XML
// to diagram snapshots. The schema dialect is detected from the root
// element, so current and legacy documents share one command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <document.xml>",
		Short: "Convert interchange XML to a diagram snapshot",
		Long: `Convert a process-engineering interchange document to a diagram snapshot (JSON).

Both the current generic schema and the legacy equipment schema are
accepted; the dialect is detected from the root element. Unknown classes,
missing layouts, and unresolvable port references degrade gracefully and
are reported as warnings.

Examples:
  flowsheet import plant.xml                   # JSON to stdout
  flowsheet import plant.xml -o diagram.json   # JSON to file
  flowsheet import - < plant.xml               # Read from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// runImport reads the document, runs the import pipeline, and writes the
// snapshot.
func (c *CLI) runImport(path string, opts importOpts) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	spin := newSpinner("converting document")
	spin.Start()
	result, err := c.newRunner().Import(data, pipeline.Options{Logger: c.Logger})
	if err != nil {
		spin.StopWithError(err)
		return err
	}
	spin.StopWithSuccess("Imported %s document as a %s diagram",
		result.Format, result.Mode)

	printWarnings(result.Warnings)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount)

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := graph.WriteSnapshot(result.Snapshot, out); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote diagram snapshot")
		printFile(opts.output)
	}
	return nil
}
