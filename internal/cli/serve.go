package cli

import (
	"github.com/spf13/cobra"

	"github.com/skarven/flowsheet/internal/api"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr string // listen address
}

// serveCommand creates the serve command for running the conversion API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP API",
		Long: `Run an HTTP server exposing the conversion pipeline.

Endpoints:
  POST /api/export    convert a diagram snapshot to interchange XML
  POST /api/import    convert interchange XML to a diagram snapshot
  POST /api/validate  check an interchange document
  GET  /healthz       health check

The server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo("Serving conversion API on %s", opts.addr)
			return api.NewServer(c.Logger).ListenAndServe(cmd.Context(), opts.addr)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", opts.addr, "listen address")

	return cmd
}
