// =============================================================================
// Sales Dashboard - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes the upload and view
// endpoints over HTTP until the process is interrupted.
//
// COMMAND USAGE:
//   salesdash serve [--addr :8080]
//
// FLAGS:
//   --addr : Listen address (default: server.addr from the configuration)
//
// GIN_MODE is honored when set; otherwise gin runs in release mode.
//
// =============================================================================

package cmd

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-dashboard/internal/server"
)

var serveAddr string

// serveCmd starts the HTTP API. It stops on SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views over HTTP",
	Long: `The serve command starts an HTTP API. Each uploaded spreadsheet becomes an
in-memory dataset whose views can be queried until it is replaced, deleted or
evicted. Nothing is written to disk.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = mainConfig.Server.Addr
		}

		if os.Getenv(gin.EnvGinMode) == "" {
			gin.SetMode(gin.ReleaseMode)
		}

		log := newLogger(mainConfig, mainConfig.LogFormat).With().Str("component", "http").Logger()
		srv := server.NewServer(server.RouterConfig{
			Store:          server.NewStore(mainConfig.Server.MaxDatasets),
			Pipeline:       pipelineOptions(mainConfig),
			MaxUploadBytes: mainConfig.Server.MaxUploadMB << 20,
			AllowedOrigins: mainConfig.Server.AllowedOrigins,
			Logger:         log,
		})
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from the configuration)")
}
