package tools

import (
	"context"
	"strings"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/mark3labs/mcp-go/mcp"
)

// EventTools lets agents browse the calendar and manage volunteer sign-ups.
// Event creation and editing stay behind the admin API.
type EventTools struct {
	eventsService *events.Service
	baseURL       string
}

func NewEventTools(eventsService *events.Service, baseURL string) *EventTools {
	return &EventTools{
		eventsService: eventsService,
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// eventItem is the tool representation of an event: the calendar view plus
// a link back to the web UI.
type eventItem struct {
	events.CalendarEvent
	Date string `json:"date"`
	URL  string `json:"url,omitempty"`
}

func (t *EventTools) item(e events.Event) eventItem {
	item := eventItem{CalendarEvent: events.CalendarView(e), Date: e.Date}
	if t.baseURL != "" && e.ID != "" {
		item.URL = t.baseURL + "/api/events/" + e.ID
	}
	return item
}

func (t *EventTools) ListEventsTool() mcp.Tool {
	return mcp.NewTool("list_events",
		mcp.WithDescription("List calendar events ordered by date and start time. Dates are YYYY-MM-DD; longer ISO timestamps are truncated to the date."),
		mcp.WithString("start_date", mcp.Description("Only events on or after this date")),
		mcp.WithString("end_date", mcp.Description("Only events on or before this date")),
		mcp.WithBoolean("needs_volunteers", mcp.Description("Only events with an empty volunteer roster")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *EventTools) ListEventsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.eventsService == nil {
		return mcp.NewToolResultError("events service not configured"), nil
	}

	var args struct {
		StartDate       string `json:"start_date"`
		EndDate         string `json:"end_date"`
		NeedsVolunteers bool   `json:"needs_volunteers"`
	}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	list, err := t.eventsService.List(ctx, events.RangeFilter{
		Start: strings.TrimSpace(args.StartDate),
		End:   strings.TrimSpace(args.EndDate),
	})
	if err != nil {
		return toolError("list events", "", err)
	}

	items := make([]eventItem, 0, len(list))
	for _, e := range list {
		if args.NeedsVolunteers && len(e.Volunteers) > 0 {
			continue
		}
		items = append(items, t.item(e))
	}
	return toolResultJSON(map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (t *EventTools) GetEventTool() mcp.Tool {
	return mcp.NewTool("get_event",
		mcp.WithDescription("Get one event with its volunteer roster by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The ULID of the event")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (t *EventTools) GetEventHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.eventsService == nil {
		return mcp.NewToolResultError("events service not configured"), nil
	}

	var args struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if strings.TrimSpace(args.ID) == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	event, err := t.eventsService.Get(ctx, args.ID)
	if err != nil {
		return toolError("get event", args.ID, err)
	}
	return toolResultJSON(t.item(*event))
}

func (t *EventTools) AddVolunteerTool() mcp.Tool {
	return mcp.NewTool("add_volunteer",
		mcp.WithDescription("Sign a volunteer up for an event. Signing the same name up twice changes nothing."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The ULID of the event")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Volunteer name as it should appear on the roster")),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (t *EventTools) AddVolunteerHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.roster(ctx, request, "add volunteer", (*events.Service).AddVolunteer)
}

func (t *EventTools) RemoveVolunteerTool() mcp.Tool {
	return mcp.NewTool("remove_volunteer",
		mcp.WithDescription("Remove a volunteer from an event roster. Unknown names are ignored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The ULID of the event")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Volunteer name to remove")),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

func (t *EventTools) RemoveVolunteerHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.roster(ctx, request, "remove volunteer", (*events.Service).RemoveVolunteer)
}

func (t *EventTools) roster(
	ctx context.Context,
	request mcp.CallToolRequest,
	action string,
	apply func(s *events.Service, ctx context.Context, id, name string) (*events.Event, error),
) (*mcp.CallToolResult, error) {
	if t == nil || t.eventsService == nil {
		return mcp.NewToolResultError("events service not configured"), nil
	}

	var args struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if strings.TrimSpace(args.ID) == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	event, err := apply(t.eventsService, ctx, args.ID, args.Name)
	if err != nil {
		return toolError(action, args.ID, err)
	}
	return toolResultJSON(t.item(*event))
}
