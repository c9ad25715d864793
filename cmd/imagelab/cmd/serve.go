package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the processing API and web UI",
	Long: `Start an HTTP server that serves the browser front end and a REST API
for image filtering and segmentation.

The server provides the following endpoints:
  GET  /               - Web front end
  GET  /healthz        - Health check
  GET  /api/techniques - List available techniques
  POST /api/process    - Process an uploaded image
  GET  /api/ws         - WebSocket processing endpoint
  GET  /metrics        - Prometheus metrics

Examples:
  imagelab serve
  imagelab serve --port 8080
  imagelab serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		corsOrigin := cfg.Server.CORSOrigin
		if cmd.Flags().Changed("cors-origin") {
			corsOrigin, _ = cmd.Flags().GetString("cors-origin")
		}

		maxUploadMB := cfg.Server.MaxUploadMB
		if cmd.Flags().Changed("max-upload-size") {
			maxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
		}

		timeout := cfg.Server.TimeoutSec
		if cmd.Flags().Changed("timeout") {
			timeout, _ = cmd.Flags().GetInt("timeout")
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if cmd.Flags().Changed("shutdown-timeout") {
			shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}

		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		srv, err := server.NewServer(server.Config{
			Host:             host,
			Port:             port,
			CORSOrigin:       corsOrigin,
			MaxUploadMB:      int64(maxUploadMB),
			TimeoutSec:       timeout,
			ProcessingConfig: cfg.Processing,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		defer func() { _ = srv.Close() }()

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(timeout) * time.Second,
			WriteTimeout:      time.Duration(timeout) * time.Second,
		}

		go func() {
			slog.Info("Starting server", "host", host, "port", port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}

		if err := srv.Close(); err != nil {
			slog.Error("Server cleanup error", "error", err)
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 25, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
}
