package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/virgil/internal/config"
	"github.com/gubarz/virgil/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compile API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to config serve_addr)")
	viper.BindPFlag("serve_addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.GetLogLevel()}))

	opts := server.Options{MaxBodyBytes: config.GetMaxBodyBytes()}
	if p := gitProvider("."); p != nil {
		opts.GitState = p
		opts.WorkspaceRemote = p.Remote()
	}
	srv := server.NewServer(log, opts)

	httpServer := &http.Server{
		Addr:         config.GetServeAddr(),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting virgil api", "addr", httpServer.Addr)
	return serveUntilDone(ctx, httpServer, log)
}

// serveUntilDone runs srv until ctx is cancelled, then returns only after
// Shutdown has drained in-flight requests
func serveUntilDone(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownDone
}
