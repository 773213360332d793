package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeAudit(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &wrapper))
	raw, ok := wrapper["audit"]
	require.True(t, ok, "no audit field in %s", buf.String())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	return entry
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithZerolog(zerolog.New(&buf))

	logger.Log(Entry{
		Action:       ActionEventUpdated,
		Actor:        "admin",
		ResourceType: "event",
		ResourceID:   "01HX12ABC123",
		Status:       StatusSuccess,
		Details:      map[string]string{"title": "Picnic"},
	})

	entry := decodeAudit(t, &buf)
	require.Equal(t, ActionEventUpdated, entry["action"])
	require.Equal(t, "admin", entry["actor"])
	require.Equal(t, "01HX12ABC123", entry["resource_id"])
	require.Equal(t, map[string]any{"title": "Picnic"}, entry["details"])
	require.NotEmpty(t, entry["timestamp"])
}

func TestLogger_DefaultsAnonymousActor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithZerolog(zerolog.New(&buf))

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	logger.LogSuccess(ctx, ActionVolunteerAdded, "", "event", "01HX", nil)

	entry := decodeAudit(t, &buf)
	require.Equal(t, "anonymous", entry["actor"])
	require.Equal(t, "203.0.113.7", entry["ip_address"])
	require.Equal(t, StatusSuccess, entry["status"])
}

func TestLogger_LogFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithZerolog(zerolog.New(&buf))

	logger.LogFailure(context.Background(), ActionLoginFailed, "mallory", map[string]string{"reason": "invalid credentials"})

	entry := decodeAudit(t, &buf)
	require.Equal(t, StatusFailure, entry["status"])
	require.Equal(t, "mallory", entry["actor"])
}

func TestLogger_NilIsNoop(t *testing.T) {
	var logger *Logger
	require.NotPanics(t, func() { logger.Log(Entry{Action: "x"}) })
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.2:5555"
	require.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	require.Equal(t, "10.0.0.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	require.Equal(t, "192.0.2.1", ClientIP(req))
}
