package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/Togather-Foundation/planner/internal/testauth"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func startClient(t *testing.T, srv *Server) *client.Client {
	t.Helper()
	cli, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	ctx := context.Background()
	require.NoError(t, cli.Start(ctx))
	_, err = cli.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "planner-test-client",
				Version: "1.0.0",
			},
		},
	})
	require.NoError(t, err)
	return cli
}

func newTestServer(t *testing.T) (*Server, *testauth.Harness) {
	t.Helper()
	h := testauth.New(testauth.Config{})
	srv := NewServer(Config{
		Name:      "Planner MCP",
		Version:   "test",
		Transport: "inprocess",
		BaseURL:   "http://localhost:8080",
	}, h.Events, zerolog.Nop())
	return srv, h
}

func TestServer_ListsCapabilities(t *testing.T) {
	srv, _ := newTestServer(t)
	cli := startClient(t, srv)
	ctx := context.Background()

	toolList, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var names []string
	for _, tool := range toolList.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{"list_events", "get_event", "add_volunteer", "remove_volunteer"}, names)

	resourceList, err := cli.ListResources(ctx, mcp.ListResourcesRequest{})
	require.NoError(t, err)
	var uris []string
	for _, r := range resourceList.Resources {
		uris = append(uris, r.URI)
	}
	require.ElementsMatch(t, []string{"schema://openapi", "info://server", "calendar://events.ics"}, uris)

	promptList, err := cli.ListPrompts(ctx, mcp.ListPromptsRequest{})
	require.NoError(t, err)
	require.Len(t, promptList.Prompts, 2)
}

func TestServer_VolunteerRoundTrip(t *testing.T) {
	srv, h := newTestServer(t)
	created, err := h.Events.Create(context.Background(), &users.Principal{UserID: "admin-id", Username: "admin"},
		events.EventInput{Title: "Picnic", Date: "2024-06-01"})
	require.NoError(t, err)

	cli := startClient(t, srv)
	ctx := context.Background()

	result, err := cli.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "add_volunteer",
			Arguments: map[string]any{"id": created.ID, "name": "Alice"},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = cli.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "list_events", Arguments: map[string]any{}},
	})
	require.NoError(t, err)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var payload struct {
		Items []struct {
			ID         string   `json:"id"`
			Volunteers []string `json:"volunteers"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	require.Len(t, payload.Items, 1)
	require.Equal(t, []string{"Alice"}, payload.Items[0].Volunteers)

	resource, err := cli.ReadResource(ctx, mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "event://" + created.ID},
	})
	require.NoError(t, err)
	require.Len(t, resource.Contents, 1)
}

func TestServer_WithoutEvents(t *testing.T) {
	srv := NewServer(Config{Name: "Planner MCP", Version: "test"}, nil, zerolog.Nop())
	cli := startClient(t, srv)

	resource, err := cli.ReadResource(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "info://server"},
	})
	require.NoError(t, err)
	text, ok := resource.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	require.Contains(t, text.Text, `"tools":false`)
}
