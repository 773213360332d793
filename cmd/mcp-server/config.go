package main

import (
	"fmt"
	"os"

	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/Togather-Foundation/planner/internal/mcp"
)

// MCPConfig extends the application config with MCP server settings.
type MCPConfig struct {
	Base      config.Config
	MCP       MCPServerConfig
	Transport *mcp.TransportConfig
}

type MCPServerConfig struct {
	Name    string
	Version string
}

// LoadConfig reads the regular planner configuration (PLANNER_CONFIG names
// an optional YAML file) plus:
//   - MCP_SERVER_NAME: name announced to clients (default: "Togather Planner MCP Server")
//   - MCP_SERVER_VERSION: version announced to clients (default: "dev")
//   - MCP_TRANSPORT, MCP_HOST, MCP_PORT: see mcp.LoadTransportConfig
func LoadConfig() (*MCPConfig, error) {
	baseConfig, err := config.Load(os.Getenv("PLANNER_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	transportConfig, err := mcp.LoadTransportConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load transport config: %w", err)
	}

	return &MCPConfig{
		Base: baseConfig,
		MCP: MCPServerConfig{
			Name:    getEnv("MCP_SERVER_NAME", "Togather Planner MCP Server"),
			Version: getEnv("MCP_SERVER_VERSION", "dev"),
		},
		Transport: transportConfig,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
