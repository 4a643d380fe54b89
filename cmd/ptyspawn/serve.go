package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/ptyspawn/internal/config"
	"pkt.systems/ptyspawn/internal/server"
)

// NewServeCommand builds the websocket pty service command.
func NewServeCommand(loader *config.Loader) *cobra.Command {
	v := loader.Viper()
	v.SetDefault("server.listen", config.DefaultListenAddr)
	v.SetDefault("server.base", config.DefaultBasePath)
	v.SetDefault("server.max_sessions", config.DefaultMaxSessions)

	var bindErr error

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket pty service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bindErr != nil {
				return bindErr
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			logger := pslog.Ctx(cmd.Context()).With("component", "serve")
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", config.DefaultListenAddr, "listen address for the HTTP server")
	flags.String("base", config.DefaultBasePath, "base path prefix for all HTTP routes")
	flags.Int("max-sessions", config.DefaultMaxSessions, "maximum concurrent pty sessions (0 = unlimited)")
	flags.String("token-hash", "", "bcrypt hash of the bearer token (empty disables auth)")

	bind := func(key, name string) {
		if bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			bindErr = err
		}
	}

	bind("server.listen", "listen")
	bind("server.base", "base")
	bind("server.max_sessions", "max-sessions")
	bind("server.token_hash", "token-hash")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, logger pslog.Logger) error {
	manager := server.NewManager(logger.With("component", "manager"), cfg.Server.MaxSessions)
	service := server.NewService(manager, logger.With("component", "service"), cfg.Server.TokenHash)

	srv, err := server.NewHTTPServer(server.ListenConfig{
		ListenAddr: cfg.Server.Listen,
		BasePath:   cfg.Server.BasePath,
		Logger:     logger.With("component", "http"),
	}, service.Handler())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("starting server", "listen", cfg.Server.Listen, "base", cfg.Server.BasePath,
		"max_sessions", cfg.Server.MaxSessions, "auth", cfg.Server.TokenHash != "")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	manager.CloseAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
