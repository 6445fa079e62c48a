// Package cli implements the reportctl commands, which run the report
// pipeline outside the HTTP server.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	verbose bool
}

// NewRootCommand builds the reportctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Generate treasury PDF reports from published CSV files",
		Long: `reportctl runs the same pipeline as the /generar-reporte endpoint and
writes the PDF to disk.

Example Usage:
  reportctl render --url https://host/brawny-letters.csv,https://host/vague-stage.csv --out reporte.pdf
  reportctl version`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to an optional .env file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	root.AddCommand(newRenderCommand(opts), newVersionCommand())
	return root
}
