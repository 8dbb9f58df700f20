package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/pipeline"
)

// newImportCmd creates the import command for building a diagram from an
// external schema document.
func newImportCmd() *cobra.Command {
	var (
		output   string
		strategy string
		title    string
	)

	cmd := &cobra.Command{
		Use:   "import <schema.json|schema.yaml>",
		Short: "Build a diagram from an OpenAPI-like schema document",
		Long: `Build a diagram from an OpenAPI-like schema document.

The input may be JSON or YAML, with type definitions under components.schemas
or a flat definitions map. $ref cross-references between definitions become
reference relationships, and entity positions are computed with the
hierarchical layout (override with --strategy).

A file that is already in diagram shape is re-validated and re-laid-out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			prog := newProgress(logger)
			runner := pipeline.NewRunner(logger)
			result, err := runner.Execute(cmd.Context(), data, pipeline.Options{
				Strategy: strategy,
				Title:    title,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Imported %d entities", len(result.Diagram.Entities)))

			if err := writeDiagramFile(result.Diagram, output); err != nil {
				return err
			}
			printSummary(result.Diagram)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "diagram.json", "output diagram file")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "layout strategy: hierarchy (default), grid, force")
	cmd.Flags().StringVar(&title, "title", "", "override the diagram title")

	return cmd
}

// writeDiagramFile serializes a diagram to path with 0644 permissions.
func writeDiagramFile(d diagram.Diagram, path string) error {
	data, err := diagram.Marshal(d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readDiagramFile loads and validates a diagram file.
func readDiagramFile(path string) (diagram.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := diagram.Unmarshal(data)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
