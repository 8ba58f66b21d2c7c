package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/cone-expert/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var serverConfigPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.serve"

			cfg, err := server.FromConfiguration(a.conf)
			if err != nil {
				return err
			}
			if serverConfigPath != "" {
				cfg, err = server.LoadConfig(serverConfigPath)
				if err != nil {
					return err
				}
				// A standalone server config may carry its own logging section.
				if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
					logger, err := initializeLogger(cfg.Logging, a.logLevel)
					if err != nil {
						return err
					}
					_ = a.logger.Sync()
					a.logger = logger
				}
			}
			if cmd.Flags().Changed("address") {
				cfg.Address, _ = cmd.Flags().GetString("address")
			}

			srv := &http.Server{
				Addr:              cfg.Address,
				Handler:           server.NewHandler(a.logger, server.OptionsFromConfig(cfg, version)),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server listening",
					zap.String("op", op),
					zap.String("address", cfg.Address),
					zap.Int64("maxBodySize", cfg.BodySizeBytes()),
					zap.Duration("sessionTTL", cfg.SessionTimeout()),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down server", zap.String("op", op))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("address", "", "listen address override, e.g. :8080")
	cmd.Flags().StringVar(&serverConfigPath, "server-config", "", "standalone server YAML configuration (replaces the server section)")
	return cmd
}
