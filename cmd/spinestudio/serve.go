package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"spinestudio/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rig operations over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := newStudio()
		if err != nil {
			log.Fatal("cannot start server", "error", err)
		}

		srv := server.NewServer(ctx, st)
		srv.Echo.Logger.SetLevel(glog.INFO)
		if verbose {
			srv.Echo.Logger.SetLevel(glog.DEBUG)
		}

		finished := make(chan struct{})
		go func() {
			<-ctx.Done()
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown error", "error", err)
			}
			close(finished)
		}()

		log.Info("server listening", "addr", serveAddr)
		if err := srv.Start(serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
		}
		<-finished
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&overlayDump, "save-overlay", "", "write each annotated image to this path (webp)")
}
