package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"aulaplan/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, false)
		defer a.Close()

		if strings.HasPrefix(strings.ToLower(a.cfg.Log.Mode), "prod") {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.NewServer(server.RouterConfig{
			Service:        a.svc,
			Log:            a.log,
			MaxUploadBytes: a.cfg.MaxUploadBytes(),
		})
		fmt.Printf("🌐 Listening on %s (database: %s)\n", addr, a.cfg.Storage.Path)
		a.log.Info("server starting", "addr", addr, "provider", a.cfg.AI.Provider, "model", a.cfg.AI.Model)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
