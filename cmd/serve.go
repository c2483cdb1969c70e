package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/api"
	"github.com/pable/tkstats/internal/render"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and character renders over HTTP",
	Long: `Start the HTTP API. Listens on the configured address (server.listen_addr
and server.http_port, default 127.0.0.1:5000) unless --addr is given.
Stops gracefully on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address host:port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	addr := cfg.Addr()
	if serveAddr != "" {
		addr = serveAddr
	}

	renders := render.NewResolver(catalog, cfg.Renders.Dirs, log)
	router := api.NewRouter(db, catalog, renders, cfg.Server.AllowedOrigins, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Serve(ctx, addr, router.Handler(), cfg.Server.ShutdownTimeout, log)
}
