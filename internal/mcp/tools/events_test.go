package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/Togather-Foundation/planner/internal/testauth"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func newTools(t *testing.T) (*EventTools, *testauth.Harness) {
	t.Helper()
	h := testauth.New(testauth.Config{})
	return NewEventTools(h.Events, "https://planner.example.org/"), h
}

func seed(t *testing.T, h *testauth.Harness, title, date string) *events.Event {
	t.Helper()
	e, err := h.Events.Create(context.Background(), &users.Principal{UserID: "admin-id", Username: "admin"},
		events.EventInput{Title: title, Date: date, StartTime: "10:00"})
	require.NoError(t, err)
	return e
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, dst any) {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), dst))
}

func TestListEventsHandler(t *testing.T) {
	tools, h := newTools(t)
	june := seed(t, h, "Picnic", "2024-06-01")
	seed(t, h, "Cleanup", "2024-07-15")
	_, err := h.Events.AddVolunteer(context.Background(), june.ID, "Alice")
	require.NoError(t, err)

	result, err := tools.ListEventsHandler(context.Background(), call(nil))
	require.NoError(t, err)
	var all struct {
		Items []eventItem `json:"items"`
		Count int         `json:"count"`
	}
	decodeResult(t, result, &all)
	require.Equal(t, 2, all.Count)
	require.Equal(t, "Picnic", all.Items[0].Title)
	require.Equal(t, "2024-06-01T10:00", all.Items[0].Start)
	require.Equal(t, "https://planner.example.org/api/events/"+june.ID, all.Items[0].URL)

	result, err = tools.ListEventsHandler(context.Background(), call(map[string]any{"start_date": "2024-07-01T00:00:00Z"}))
	require.NoError(t, err)
	decodeResult(t, result, &all)
	require.Equal(t, 1, all.Count)
	require.Equal(t, "Cleanup", all.Items[0].Title)

	result, err = tools.ListEventsHandler(context.Background(), call(map[string]any{"needs_volunteers": true}))
	require.NoError(t, err)
	decodeResult(t, result, &all)
	require.Equal(t, 1, all.Count)
	require.Equal(t, "Cleanup", all.Items[0].Title)
	require.Equal(t, []string{}, all.Items[0].Volunteers)
}

func TestListEventsHandler_BadRange(t *testing.T) {
	tools, _ := newTools(t)

	result, err := tools.ListEventsHandler(context.Background(), call(map[string]any{"start_date": "soon"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, resultText(t, result), "start")
}

func TestGetEventHandler(t *testing.T) {
	tools, h := newTools(t)
	e := seed(t, h, "Picnic", "2024-06-01")

	result, err := tools.GetEventHandler(context.Background(), call(map[string]any{"id": e.ID}))
	require.NoError(t, err)
	var item eventItem
	decodeResult(t, result, &item)
	require.Equal(t, e.ID, item.ID)
	require.Equal(t, "2024-06-01", item.Date)
	require.Equal(t, "2024-06-01T23:59", item.End)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", nil, "id parameter is required"},
		{"malformed id", map[string]any{"id": "nope"}, "event not found: nope"},
		{"unknown id", map[string]any{"id": "01HX1234567890ABCDEFGHJKMN"}, "event not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.GetEventHandler(context.Background(), call(tt.args))
			require.NoError(t, err)
			require.True(t, result.IsError)
			require.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestVolunteerHandlers(t *testing.T) {
	tools, h := newTools(t)
	e := seed(t, h, "Picnic", "2024-06-01")
	args := map[string]any{"id": e.ID, "name": "  Alice  "}

	var item eventItem
	for range 2 {
		result, err := tools.AddVolunteerHandler(context.Background(), call(args))
		require.NoError(t, err)
		decodeResult(t, result, &item)
	}
	require.Equal(t, []string{"Alice"}, item.Volunteers)

	result, err := tools.AddVolunteerHandler(context.Background(), call(map[string]any{"id": e.ID, "name": "   "}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	result, err = tools.RemoveVolunteerHandler(context.Background(), call(args))
	require.NoError(t, err)
	decodeResult(t, result, &item)
	require.Empty(t, item.Volunteers)

	stored, err := h.Events.Get(context.Background(), e.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Volunteers)
}

func TestHandlers_NotConfigured(t *testing.T) {
	var tools *EventTools
	result, err := tools.ListEventsHandler(context.Background(), call(nil))
	require.NoError(t, err)
	require.True(t, result.IsError)

	result, err = tools.AddVolunteerHandler(context.Background(), call(map[string]any{"id": "x", "name": "y"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}
