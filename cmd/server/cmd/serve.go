package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/api"
	"github.com/eventdesk/server/internal/api/handlers"
	"github.com/eventdesk/server/internal/auth"
	"github.com/eventdesk/server/internal/metrics"
	"github.com/eventdesk/server/internal/storage/postgres"
	"github.com/eventdesk/server/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost     string
	serverPort     int
	skipMigrations bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the eventdesk HTTP server",
	Long: `Start the eventdesk HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Apply pending schema migrations unless --skip-migrations is set
- Serve the staff API, the public customer API, health and metrics endpoints
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with custom config file
  server serve --config /etc/eventdesk/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
}

func runServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	if !skipMigrations {
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return err
		}
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	logger.Info().Str("environment", cfg.Environment).Msg("starting eventdesk server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	collectorCtx, collectorCancel := context.WithCancel(ctx)
	defer collectorCancel()
	go metrics.NewDBCollector(a.pool).Start(collectorCtx, 15*time.Second)

	migrationVersion := func() (uint, bool, error) {
		return postgres.MigrationVersion(cfg.Database.URL, cfg.Database.MigrationsPath)
	}
	handler := api.NewRouter(ctx, cfg, logger, api.Deps{
		Events:    a.events,
		Customers: a.customers,
		JWT:       auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		Health:    handlers.NewHealthChecker(a.repo, migrationVersion, Version, GitCommit),
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       30 * time.Second, // uploads need longer than JSON bodies
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	return gracefulShutdown(server, logger)
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
