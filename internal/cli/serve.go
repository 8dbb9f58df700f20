package cli

import (
	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/internal/server"
)

// newServeCmd creates the serve command running the HTTP API.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram HTTP API",
		Long: `Run the diagram HTTP API.

The server manages a single diagram persisted in the configured store
(file by default; memory, redis and mongo via schemadraw.toml) and exposes
import, export, layout and entity-editing endpoints under /api/diagram.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logger.Warn("closing store", "err", cerr)
				}
			}()
			logger.Debug("store ready", "backend", cfg.Store.Backend)

			return server.New(st, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
