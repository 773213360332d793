// Package prompts holds MCP prompt templates for common planning chores.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	staffingReviewPrompt = "staffing_review"
	volunteerCallPrompt  = "volunteer_call"
	defaultCallAudience  = "community members"
)

type PromptTemplates struct{}

func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{}
}

func (p *PromptTemplates) StaffingReviewPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		staffingReviewPrompt,
		mcp.WithPromptDescription("Review which upcoming events still have no volunteers"),
		mcp.WithArgument("start_date", mcp.ArgumentDescription("First day to review (YYYY-MM-DD)")),
		mcp.WithArgument("end_date", mcp.ArgumentDescription("Last day to review (YYYY-MM-DD)")),
	)
}

func (p *PromptTemplates) VolunteerCallPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		volunteerCallPrompt,
		mcp.WithPromptDescription("Draft a short call for volunteers for one event"),
		mcp.WithArgument("event_id", mcp.RequiredArgument(), mcp.ArgumentDescription("ID of the event that needs helpers")),
		mcp.WithArgument("audience", mcp.ArgumentDescription("Who the message is addressed to")),
	)
}

func (p *PromptTemplates) StaffingReviewHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	window := "all planned events"
	start, end := getArgString(args, "start_date"), getArgString(args, "end_date")
	switch {
	case start != "" && end != "":
		window = fmt.Sprintf("events from %s to %s", start, end)
	case start != "":
		window = fmt.Sprintf("events on or after %s", start)
	case end != "":
		window = fmt.Sprintf("events on or before %s", end)
	}

	text := fmt.Sprintf("Call the list_events tool with needs_volunteers set to true for %s. "+
		"Summarize the result as a list grouped by date with each event's title and time, "+
		"then point out the event that is soonest and still has nobody signed up.", window)

	return &mcp.GetPromptResult{
		Description: "Review volunteer coverage",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func (p *PromptTemplates) VolunteerCallHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	eventID := getArgString(args, "event_id")
	if eventID == "" {
		return nil, fmt.Errorf("event_id is required")
	}
	audience := getArgString(args, "audience")
	if audience == "" {
		audience = defaultCallAudience
	}

	text := fmt.Sprintf("Call the get_event tool with id %s. Using its title, date, time and description, "+
		"write a friendly message of at most five sentences asking %s to volunteer. "+
		"Mention how many people are already signed up, and do not invent details that the event does not contain.", eventID, audience)

	return &mcp.GetPromptResult{
		Description: "Call for volunteers",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func getArgString(args map[string]string, key string) string {
	if args == nil {
		return ""
	}
	return strings.TrimSpace(args[key])
}
