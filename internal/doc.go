// Package internal documents the planner server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses and routing
// - domain: events, the volunteer roster and the administrator account
// - storage: Postgres repositories and migrations
// - client: the API client used by the CLI
// - mcp: the Model Context Protocol surface for agents
// - auth, audit, config, metrics, telemetry, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
