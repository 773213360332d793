package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Togather-Foundation/planner/internal/audit"
	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/mcp"
	"github.com/Togather-Foundation/planner/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Stdout belongs to the protocol on the stdio transport, so logs always
	// go to stderr.
	logger := config.NewLoggerTo(cfg.Base.Logging, os.Stderr)
	logger.Info().
		Str("transport", string(cfg.Transport.Type)).
		Str("mcp_name", cfg.MCP.Name).
		Str("mcp_version", cfg.MCP.Version).
		Str("environment", cfg.Base.Environment).
		Msg("starting MCP server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connectDatabase(ctx, cfg.Base.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository initialization failed: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Base.Calendar.Timezone)
	if err != nil {
		loc = time.UTC
	}
	eventsService := events.NewService(repo.Events(), audit.NewLoggerWithZerolog(logger), logger)
	mcpServer := mcp.NewServer(mcp.Config{
		Name:      cfg.MCP.Name,
		Version:   cfg.MCP.Version,
		Transport: string(cfg.Transport.Type),
		BaseURL:   cfg.Base.Server.BaseURL,
		Feed: events.FeedOptions{
			ProductID: cfg.Base.Calendar.ProductID,
			Name:      "Togather Planner",
			Location:  loc,
		},
	}, eventsService, logger)

	serveErr := mcp.Serve(ctx, mcpServer.MCPServer(), cfg.Transport, cfg.Base.RateLimit, cfg.Base.Environment, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := mcpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("MCP server shutdown error")
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("server error: %w", serveErr)
	}
	logger.Info().Msg("shutdown complete")
	return nil
}

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
