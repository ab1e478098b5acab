package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/vocabcards/internal/api"
	"github.com/lehmann314159/vocabcards/internal/config"
	"github.com/lehmann314159/vocabcards/internal/models"
	"github.com/lehmann314159/vocabcards/internal/services"
)

func newServeCmd(a *app) *cobra.Command {
	var shutdownTO time.Duration

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the command server for the UI shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, shutdownTO)
		},
	}
	serveCmd.Flags().String("host", config.DefaultHost, "listen address (env HOST)")
	serveCmd.Flags().Int("port", config.DefaultPort, "listen port (env PORT)")
	serveCmd.Flags().DurationVar(&shutdownTO, "shutdown-timeout", 15*time.Second, "graceful shutdown timeout")

	return serveCmd
}

// serve runs the HTTP transport until ctx is cancelled, then shuts down gracefully
func (a *app) serve(ctx context.Context, shutdownTO time.Duration) error {
	log := a.log.Logger

	// An unusable store is reported per command, not fatal to the server
	if msg, err := a.cards.TestDatabaseConnection(ctx); err != nil {
		log.Warn("database unavailable at startup, serving anyway",
			"kind", models.KindOf(err),
			"database", a.provider.Path(),
			"error", err,
		)
	} else {
		log.Info(msg, "database", a.provider.Path())
	}

	addr := net.JoinHostPort(a.cfg.HTTP.Host, strconv.Itoa(a.cfg.HTTP.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	origins := a.cfg.HTTP.AllowedOrigins
	if len(origins) == 0 {
		origins = loopbackOrigins(listener.Addr())
	}

	importer := services.NewImportService(a.cards, a.dictionary(), log)
	handler := api.NewHandler(a.cards, importer, log, version.String())
	router := api.NewRouter(handler, log, api.RouterOptions{
		APIToken:       a.cfg.HTTP.APIToken,
		AllowedOrigins: origins,
	})

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", listener.Addr().String(), "version", version.String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		// graceful shutdown
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTO)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// loopbackOrigins lists the origins a UI shell served from addr would send
func loopbackOrigins(addr net.Addr) []string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil
	}
	port := strconv.Itoa(tcp.Port)
	return []string{
		"http://" + net.JoinHostPort(tcp.IP.String(), port),
		"http://localhost:" + port,
	}
}
