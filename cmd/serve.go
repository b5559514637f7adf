package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/api"
	"github.com/International-Combat-Archery-Alliance/event-checkin/config"
	"github.com/International-Combat-Archery-Alliance/event-checkin/qrtoken"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Run the check-in HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}

	cmd.Flags().String("host", "", "host to listen on")
	cmd.Flags().String("port", "", "port to listen on")
	a.v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	env := api.LOCAL
	if a.cfg.Env == config.EnvProd {
		env = api.PROD
	}

	shutdownTracing, err := setupTracing(ctx, a.cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownTracing(flushCtx); err != nil {
			a.logger.Error("Failed to flush traces", slog.Any("error", err))
		}
	}()

	db, err := newDynamoDB(ctx, a.cfg.Dynamo)
	if err != nil {
		return err
	}

	emailSender, err := createEmailSender(ctx, a.logger, env)
	if err != nil {
		return err
	}

	checkInAPI := api.NewAPI(db, a.logger, env, qrtoken.NewCodec(a.logger), emailSender, a.cfg.Email.FromAddress, a.cfg.Server.AllowedOrigins)

	s := &http.Server{
		Handler:           checkInAPI.Handler(),
		Addr:              net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", slog.String("addr", s.Addr), slog.String("env", a.cfg.Env))
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = s.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}
