package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	calendarMIMEType      = "text/calendar"
	calendarResource      = "calendar://events.ics"
	eventResourcePrefix   = "event://"
	eventResourceTemplate = eventResourcePrefix + "{id}"
)

// CalendarResources serves the live calendar: the whole feed as iCalendar
// and single events as JSON.
type CalendarResources struct {
	eventsService *events.Service
	feed          events.FeedOptions
}

func NewCalendarResources(eventsService *events.Service, feed events.FeedOptions) *CalendarResources {
	return &CalendarResources{eventsService: eventsService, feed: feed}
}

func (r *CalendarResources) FeedResource() mcp.Resource {
	return mcp.NewResource(
		calendarResource,
		"Calendar Feed",
		mcp.WithResourceDescription("Every planned event as an iCalendar document"),
		mcp.WithMIMEType(calendarMIMEType),
	)
}

func (r *CalendarResources) EventTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		eventResourceTemplate,
		"Event",
		mcp.WithTemplateDescription("One event with its volunteer roster"),
		mcp.WithTemplateMIMEType(schemaMIMEType),
	)
}

func (r *CalendarResources) FeedReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := r.eventsService.List(ctx, events.RangeFilter{})
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		body, err := events.RenderICS(list, r.feed)
		if err != nil {
			return nil, fmt.Errorf("render calendar: %w", err)
		}
		return textContents(request, calendarResource, calendarMIMEType, body), nil
	}
}

func (r *CalendarResources) EventReadHandler() func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, eventResourcePrefix)
		event, err := r.eventsService.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", request.Params.URI, err)
		}
		data, err := json.Marshal(events.CalendarView(*event))
		if err != nil {
			return nil, err
		}
		return textContents(request, request.Params.URI, schemaMIMEType, string(data)), nil
	}
}
