package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/buildinfo"
)

// Execute runs the schemadraw CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (import,
// export, layout, entity, serve), configures logging based on the --verbose
// flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "schemadraw",
		Short:        "schemadraw builds and converts schema diagrams",
		Long:         `schemadraw is the schema graph engine behind the diagram editor: it imports OpenAPI-like schema documents into an entity/relationship diagram, keeps references consistent under edits, computes layouts, and exports the diagram into several interchange formats.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to schemadraw.toml (default: ./schemadraw.toml if present)")

	root.AddCommand(newImportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newEntityCmd())
	root.AddCommand(newServeCmd(&configPath))

	return root.ExecuteContext(ctx)
}
