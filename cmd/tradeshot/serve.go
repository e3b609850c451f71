package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tradeshot/internal/logger"
	"tradeshot/internal/server"
	"tradeshot/internal/server/ws"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API and live WebSocket feed",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default server.port from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	a, err := buildApp(ctx, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	compressOldLogs(ctx, a.store, a.cfg.Retention.Days)

	port := a.cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	srv := server.New(server.Config{
		Port:        port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		UploadDir:   a.cfg.Paths.UploadDir,
	}, a.processor, hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hub.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info(context.Background(), "Dashboard stopped")
	return err
}
