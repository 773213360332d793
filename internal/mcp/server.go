package mcp

import (
	"context"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/mcp/prompts"
	"github.com/Togather-Foundation/planner/internal/mcp/resources"
	"github.com/Togather-Foundation/planner/internal/mcp/tools"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server exposes the planner calendar to MCP clients: tools to browse events
// and manage volunteers, the calendar and API contract as resources, and
// prompts for volunteer coordination.
type Server struct {
	mcp           *mcpserver.MCPServer
	eventsService *events.Service
	cfg           Config
	logger        zerolog.Logger
}

type Config struct {
	Name      string
	Version   string
	Transport string

	// BaseURL is the public address of the REST API, used for event links.
	BaseURL string
	Feed    events.FeedOptions
}

func NewServer(cfg Config, eventsService *events.Service, logger zerolog.Logger) *Server {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions("MCP server for the Togather planner: browse the event calendar and sign volunteers up or off"),
	)

	srv := &Server{
		mcp:           mcpServer,
		eventsService: eventsService,
		cfg:           cfg,
		logger:        logger.With().Str("component", "mcp").Logger(),
	}
	srv.registerTools()
	srv.registerResources()
	srv.registerPrompts()
	return srv
}

// MCPServer returns the underlying server for the transports.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	if s.eventsService == nil {
		return
	}
	eventTools := tools.NewEventTools(s.eventsService, s.cfg.BaseURL)
	s.mcp.AddTool(eventTools.ListEventsTool(), eventTools.ListEventsHandler)
	s.mcp.AddTool(eventTools.GetEventTool(), eventTools.GetEventHandler)
	s.mcp.AddTool(eventTools.AddVolunteerTool(), eventTools.AddVolunteerHandler)
	s.mcp.AddTool(eventTools.RemoveVolunteerTool(), eventTools.RemoveVolunteerHandler)
}

func (s *Server) registerResources() {
	schemas := resources.NewSchemaResources()
	s.mcp.AddResource(schemas.OpenAPIResource(), schemas.OpenAPIReadHandler())
	s.mcp.AddResource(schemas.InfoResource(), schemas.InfoReadHandler(resources.ServerInfo{
		Name:    s.cfg.Name,
		Version: s.cfg.Version,
		BaseURL: s.cfg.BaseURL,
		Capabilities: resources.ServerCapabilities{
			Tools:     s.eventsService != nil,
			Resources: true,
			Prompts:   true,
		},
		Transport: s.cfg.Transport,
	}))

	if s.eventsService == nil {
		return
	}
	calendar := resources.NewCalendarResources(s.eventsService, s.cfg.Feed)
	s.mcp.AddResource(calendar.FeedResource(), calendar.FeedReadHandler())
	s.mcp.AddResourceTemplate(calendar.EventTemplate(), calendar.EventReadHandler())
}

func (s *Server) registerPrompts() {
	templates := prompts.NewPromptTemplates()
	s.mcp.AddPrompt(templates.StaffingReviewPrompt(), templates.StaffingReviewHandler)
	s.mcp.AddPrompt(templates.VolunteerCallPrompt(), templates.VolunteerCallHandler)
}

// Shutdown releases server resources. Tools hold no state of their own.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info().Msg("mcp server shut down")
	return nil
}
