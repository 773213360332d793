// Package resources exposes read-only planner documents as MCP resources.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Togather-Foundation/planner/internal/api"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	schemaMIMEType     = "application/json"
	openAPIResource    = "schema://openapi"
	serverInfoResource = "info://server"
)

type ServerCapabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

type ServerInfo struct {
	Name         string             `json:"name"`
	Version      string             `json:"version,omitempty"`
	BaseURL      string             `json:"base_url,omitempty"`
	Capabilities ServerCapabilities `json:"capabilities"`
	Transport    string             `json:"transport,omitempty"`
}

type SchemaResources struct {
	infoOnce sync.Once
	infoJSON string
	infoErr  error
}

func NewSchemaResources() *SchemaResources {
	return &SchemaResources{}
}

func (r *SchemaResources) OpenAPIResource() mcp.Resource {
	return mcp.NewResource(
		openAPIResource,
		"OpenAPI Schema",
		mcp.WithResourceDescription("OpenAPI contract of the planner REST API"),
		mcp.WithMIMEType(schemaMIMEType),
	)
}

func (r *SchemaResources) InfoResource() mcp.Resource {
	return mcp.NewResource(
		serverInfoResource,
		"Server Info",
		mcp.WithResourceDescription("MCP server metadata and capabilities"),
		mcp.WithMIMEType(schemaMIMEType),
	)
}

func (r *SchemaResources) OpenAPIReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, err := api.OpenAPIJSON()
		if err != nil {
			return nil, fmt.Errorf("load openapi: %w", err)
		}
		return textContents(request, openAPIResource, schemaMIMEType, string(content)), nil
	}
}

func (r *SchemaResources) InfoReadHandler(info ServerInfo) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, err := r.loadInfo(info)
		if err != nil {
			return nil, err
		}
		return textContents(request, serverInfoResource, schemaMIMEType, content), nil
	}
}

func (r *SchemaResources) loadInfo(info ServerInfo) (string, error) {
	r.infoOnce.Do(func() {
		data, err := json.Marshal(info)
		if err != nil {
			r.infoErr = err
			return
		}
		r.infoJSON = string(data)
	})

	if r.infoErr != nil {
		return "", fmt.Errorf("load server info: %w", r.infoErr)
	}
	return r.infoJSON, nil
}

// textContents answers with the URI the client asked for, falling back to
// the canonical one.
func textContents(request mcp.ReadResourceRequest, uri, mimeType, text string) []mcp.ResourceContents {
	if requested := strings.TrimSpace(request.Params.URI); requested != "" {
		uri = requested
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		},
	}
}
