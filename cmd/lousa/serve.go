package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lousa"
	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/internal/presentation/tui"
	httpAdapter "github.com/aretw0/lousa/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the relay, the board API and the report endpoints over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return fmt.Errorf("error initializing lousa: %w", err)
		}
		defer app.Close()

		addr := app.Config.Addr
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			addr = ":" + port
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithBoards(app.Boards),
			httpAdapter.WithMetrics(app.Metrics),
			httpAdapter.WithVersion(lousa.Version),
			httpAdapter.WithLogger(logging.For(app.Logger, "http")),
			httpAdapter.WithCameraURLs(app.Config.CameraURLs...),
		}
		if app.Archive != nil {
			opts = append(opts, httpAdapter.WithArchive(app.Archive))
		}
		if app.Audit != nil {
			opts = append(opts, httpAdapter.WithAudit(app.Audit))
		}
		api, err := httpAdapter.NewServer(app.Relay, app.Settings, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		tui.PrintBanner(cmd.OutOrStdout(), lousa.Version)

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("starting lousa server", "address", srv.Addr, "providers", app.Relay.Providers())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			app.Logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.Logger.Info("lousa server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides the configured address)")
}
