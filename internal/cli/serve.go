package cli

import (
	"proedualt/internal/jobs"
	"proedualt/internal/portfolio"
	"proedualt/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve public portfolio pages over HTTP",
		Long: `Start an HTTP server for public portfolios.

Available endpoints:
- GET /p/{handle}: Portfolio page
- GET /api/portfolio/{handle}: Portfolio as JSON
- GET /api/jobs: Job listings as JSON
- GET /health: Health check including the backend circuit breaker
- GET /stats: Server statistics and rate limiting info
- GET /metrics: Prometheus metrics (when enabled)

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			serverCfg := a.cfg.Server
			if cmd.Flags().Changed("host") {
				serverCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}

			srv := server.NewServer(serverCfg, server.Dependencies{
				Version:       Version,
				Portfolios:    portfolio.NewRenderer(a.client, a.om.Metrics(), a.logger),
				Jobs:          jobs.NewBoard(a.client, a.logger),
				Breaker:       a.client.Breaker(),
				Observability: a.om,
			}, a.logger)
			srv.DisplayServerInfo(cmd.ErrOrStderr())
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (default from config)")
	return cmd
}
