// Package tools implements the MCP tools that expose the planner to agents.
package tools

import (
	"encoding/json"
	"errors"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/mark3labs/mcp-go/mcp"
)

// decodeArgs copies the loosely typed tool arguments into dst.
func decodeArgs(request mcp.CallToolRequest, dst any) error {
	if request.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// toolResultJSON converts a payload to an MCP tool result with JSON content.
func toolResultJSON(payload any) (*mcp.CallToolResult, error) {
	resultJSON, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build response", err), nil
	}
	return resultJSON, nil
}

// toolError maps domain errors onto tool error results. Only unexpected
// failures surface as Go errors, which the server turns into JSON-RPC errors.
func toolError(action, id string, err error) (*mcp.CallToolResult, error) {
	var verr events.ValidationError
	switch {
	case errors.Is(err, events.ErrNotFound):
		return mcp.NewToolResultErrorf("event not found: %s", id), nil
	case errors.As(err, &verr):
		return mcp.NewToolResultError(verr.Error()), nil
	default:
		return mcp.NewToolResultErrorFromErr("failed to "+action, err), nil
	}
}
