package cli

import (
	"github.com/spf13/cobra"

	"github.com/pedigraph/pedigraph/internal/api"
	"github.com/pedigraph/pedigraph/pkg/pipeline"
)

// newServeCmd creates the serve command for running the HTTP API server.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the layout and render pipeline over HTTP, backed by the
configured snapshot store and cache. The server shuts down gracefully on
SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			c, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			runner := pipeline.NewRunner(c, nil, logger)
			defer runner.Close()

			logger.Info("starting server",
				"addr", addr,
				"cache", cfg.Cache.Backend,
				"store", cfg.Store.Backend)

			return api.New(runner, st, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
