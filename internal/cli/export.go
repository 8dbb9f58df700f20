package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/schema"
)

// newExportCmd creates the export command for serializing a diagram into an
// interchange format.
func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <diagram.json>",
		Short: "Serialize a diagram into a schema interchange format",
		Long: `Serialize a diagram into a schema interchange format.

Formats:
  internal     the diagram round-trip JSON itself (default)
  openapi      components.schemas with $ref cross-references
  nosql        document-database collections with explicit reference fields
  json-schema  flat definitions map with $ref cross-references

References whose target entity no longer exists are exported as plain
strings with an explanatory note instead of failing the export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := schema.ParseFormat(format)
			if err != nil {
				return err
			}
			d, err := readDiagramFile(args[0])
			if err != nil {
				return err
			}
			out, err := schema.Export(d, f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(append(out, '\n'))
				return err
			}
			if err := os.WriteFile(output, out, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			loggerFromContext(cmd.Context()).Info("exported", "format", f, "file", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "export format: internal (default), openapi, nosql, json-schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
