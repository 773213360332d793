package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Actions recorded by the planner.
const (
	ActionAdminRegistered  = "auth.admin.register"
	ActionLoginSucceeded   = "auth.login"
	ActionLoginFailed      = "auth.login.failed"
	ActionEventCreated     = "event.create"
	ActionEventUpdated     = "event.update"
	ActionEventDeleted     = "event.delete"
	ActionVolunteerAdded   = "event.volunteer.add"
	ActionVolunteerRemoved = "event.volunteer.remove"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry represents a single audit log entry with structured fields
type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	Actor        string            `json:"actor"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	IPAddress    string            `json:"ip_address,omitempty"`
	Status       string            `json:"status"`
	Details      map[string]string `json:"details,omitempty"`
}

func (e Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Time("timestamp", e.Timestamp).
		Str("action", e.Action).
		Str("actor", e.Actor).
		Str("status", e.Status)
	if e.ResourceType != "" {
		ev.Str("resource_type", e.ResourceType)
	}
	if e.ResourceID != "" {
		ev.Str("resource_id", e.ResourceID)
	}
	if e.IPAddress != "" {
		ev.Str("ip_address", e.IPAddress)
	}
	if len(e.Details) > 0 {
		ev.Dict("details", zerolog.Dict().Fields(stringMap(e.Details)))
	}
}

// Logger writes audit entries as structured log lines under an "audit" key.
type Logger struct {
	output zerolog.Logger
}

// NewLogger returns an audit logger on top of the global zerolog logger.
func NewLogger() *Logger {
	return NewLoggerWithZerolog(log.Logger)
}

func NewLoggerWithZerolog(logger zerolog.Logger) *Logger {
	return &Logger{output: logger.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = "anonymous"
	}
	l.output.Info().Object("audit", entry).Msg("audit")
}

func (l *Logger) LogSuccess(ctx context.Context, action, actor, resourceType, resourceID string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ClientIPFromContext(ctx),
		Status:       StatusSuccess,
		Details:      details,
	})
}

func (l *Logger) LogFailure(ctx context.Context, action, actor string, details map[string]string) {
	l.Log(Entry{
		Action:    action,
		Actor:     actor,
		IPAddress: ClientIPFromContext(ctx),
		Status:    StatusFailure,
		Details:   details,
	})
}

// ClientIP gets the client IP from proxy headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type contextKey string

const clientIPKey contextKey = "auditClientIP"

// WithClientIP stores the caller's address for entries logged further down the stack.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

func stringMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
