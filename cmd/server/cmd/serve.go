package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/planner/internal/api"
	"github.com/Togather-Foundation/planner/internal/audit"
	"github.com/Togather-Foundation/planner/internal/auth"
	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/Togather-Foundation/planner/internal/metrics"
	"github.com/Togather-Foundation/planner/internal/storage/postgres"
	"github.com/Togather-Foundation/planner/internal/telemetry"
	"github.com/Togather-Foundation/planner/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

type serveFlags struct {
	host        string
	port        int
	skipMigrate bool
}

func newServeCommand(opts *options) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the planner HTTP server",
		Long: `Start the planner HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Apply pending database migrations unless DATABASE_AUTO_MIGRATE=false
- Serve the JSON API under /api, the iCalendar feed and the web UI
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug --log-format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "server port (default: 8080)")
	cmd.Flags().BoolVar(&flags.skipMigrate, "skip-migrate", false, "do not apply migrations at startup")
	return cmd
}

func runServer(cmd *cobra.Command, opts *options, flags serveFlags) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Msg("starting planner server")

	metrics.Init(Version, GitCommit, BuildDate)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if cfg.Database.AutoMigrate && !flags.skipMigrate {
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Database.MigrationsPath).Msg("migrations applied")
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	router := api.NewRouter(buildDeps(cfg, logger, repo))
	defer router.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	collector := metrics.NewDBCollector(pool)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collector.Start(gctx, poolStatsInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolCfg.MinConns = int32(cfg.MinConnections)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

func buildDeps(cfg config.Config, logger zerolog.Logger, repo *postgres.Repository) api.Deps {
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	auditLogger := audit.NewLoggerWithZerolog(logger)

	return api.Deps{
		Config:   cfg,
		Logger:   logger,
		Users:    users.NewService(repo.Users(), auth.NewPasswordHasher(auth.BcryptCost), tokens, auditLogger, logger),
		Events:   events.NewService(repo.Events(), auditLogger, logger),
		Database: repo,
		Build:    api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
		Web:      web.Handler(),
	}
}
