// Package mcp serves the planner over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Togather-Foundation/planner/internal/api/middleware"
	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type TransportType string

// Stdio talks over standard input and output, for desktop agents that spawn
// the server themselves. HTTP is the streamable HTTP transport.
const (
	TransportStdio TransportType = "stdio"
	TransportSSE   TransportType = "sse"
	TransportHTTP  TransportType = "http"
)

const (
	DefaultTransport = TransportStdio
	DefaultPort      = 8090

	GracefulShutdownTimeout = 30 * time.Second
)

// TransportConfig selects the transport. Port and Host are ignored for stdio.
type TransportConfig struct {
	Type TransportType
	Port int
	Host string
}

// LoadTransportConfig reads MCP_TRANSPORT, MCP_HOST and MCP_PORT. The MCP
// prefix keeps them apart from the REST server's settings in a shared .env.
func LoadTransportConfig() (*TransportConfig, error) {
	cfg := &TransportConfig{
		Type: DefaultTransport,
		Port: DefaultPort,
		Host: "0.0.0.0",
	}

	if transportEnv := os.Getenv("MCP_TRANSPORT"); transportEnv != "" {
		transport := TransportType(transportEnv)
		switch transport {
		case TransportStdio, TransportSSE, TransportHTTP:
			cfg.Type = transport
		default:
			return nil, fmt.Errorf("invalid MCP_TRANSPORT value: %s (must be stdio, sse, or http)", transportEnv)
		}
	}

	if portEnv := os.Getenv("MCP_PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MCP_PORT value: %s (must be a number)", portEnv)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid MCP_PORT value: %d (must be between 1 and 65535)", port)
		}
		cfg.Port = port
	}

	if hostEnv := os.Getenv("MCP_HOST"); hostEnv != "" {
		cfg.Host = hostEnv
	}
	return cfg, nil
}

// ServeStdio serves one client on in and out until ctx is cancelled or the
// client disconnects. Nothing else may write to out.
func ServeStdio(ctx context.Context, mcpServer *server.MCPServer, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	logger.Info().Str("transport", "stdio").Msg("starting MCP server")
	err := server.NewStdioServer(mcpServer).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// ServeHandler runs handler on the configured address until ctx is cancelled.
func ServeHandler(ctx context.Context, handler http.Handler, cfg *TransportConfig, logger zerolog.Logger) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("transport", string(cfg.Type)).Str("addr", addr).Msg("MCP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", cfg.Type, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("MCP server shutdown failed")
			return fmt.Errorf("%s server shutdown: %w", cfg.Type, err)
		}
		logger.Info().Msg("MCP server shutdown complete")
		return nil
	})
	return g.Wait()
}

// Serve starts the configured transport. Stdio uses the process streams.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, rateLimitCfg config.RateLimitConfig, env string, logger zerolog.Logger) error {
	switch cfg.Type {
	case TransportStdio:
		return ServeStdio(ctx, mcpServer, os.Stdin, os.Stdout, logger)
	case TransportSSE, TransportHTTP:
		handler, err := NewHandler(mcpServer, cfg.Type)
		if err != nil {
			return err
		}
		return ServeHandler(ctx, WrapHandler(handler, rateLimitCfg, env, logger), cfg, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}

// NewHandler builds the HTTP handler for a network transport.
func NewHandler(mcpServer *server.MCPServer, transport TransportType) (http.Handler, error) {
	switch transport {
	case TransportSSE:
		return server.NewSSEServer(mcpServer), nil
	case TransportHTTP:
		return server.NewStreamableHTTPServer(mcpServer), nil
	default:
		return nil, fmt.Errorf("transport %s has no HTTP handler", transport)
	}
}

// WrapHandler puts the REST API's request ID, logging and public rate limit
// in front of an MCP handler.
func WrapHandler(handler http.Handler, rateLimitCfg config.RateLimitConfig, env string, logger zerolog.Logger) http.Handler {
	wrapped := middleware.RateLimit(rateLimitCfg, env)(handler)
	wrapped = middleware.WithRateLimitTierHandler(middleware.TierPublic)(wrapped)
	wrapped = middleware.RequestLogging(logger)(wrapped)
	return middleware.CorrelationID(logger)(wrapped)
}
