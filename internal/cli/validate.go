package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCommand creates the validate command for checking interchange
// documents without converting them.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.xml>",
		Short: "Check an interchange document without converting it",
		Long: `Check an interchange document for structural problems.

Fatal problems (malformed XML, unrecognized root element, missing process
model, duplicate step ids) are reported as errors and fail the command.
Degradations the converter would survive (dangling port references,
modes without a native representation) are reported as warnings.

Examples:
  flowsheet validate plant.xml
  flowsheet validate - < plant.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}

	return cmd
}

// runValidate reads the document and prints the validation verdict.
func (c *CLI) runValidate(path string) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	result := c.newRunner().Validate(data)
	prog.done(fmt.Sprintf("Checked %d byte(s)", len(data)))

	for _, e := range result.Errors {
		printError("%s", e)
	}
	printWarnings(result.Warnings)

	if !result.Valid {
		return fmt.Errorf("document is invalid (%d error(s))", len(result.Errors))
	}
	printSuccess("Document is valid")
	return nil
}
