package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/layout"
)

// newLayoutCmd creates the layout command for recomputing entity positions.
func newLayoutCmd() *cobra.Command {
	var (
		strategy string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "layout <diagram.json>",
		Short: "Recompute entity positions with a layout strategy",
		Long: `Recompute entity positions with a layout strategy.

Strategies:
  hierarchy  one column per reference depth (default)
  grid       row-major square-ish grid
  force      force-directed relaxation

A diagram without relationships always falls back to the grid, and a
hierarchy request on a rootless reference graph falls back to force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := layout.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			d, err := readDiagramFile(args[0])
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			d = layout.Apply(s, d)
			prog.done(fmt.Sprintf("Laid out %d entities (%s)", len(d.Entities), s))

			if output == "" {
				output = args[0]
			}
			return writeDiagramFile(d, output)
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "layout strategy: hierarchy (default), grid, force")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}
