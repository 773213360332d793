package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTransportConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    TransportConfig
		wantErr string
	}{
		{
			name: "defaults",
			want: TransportConfig{Type: TransportStdio, Port: DefaultPort, Host: "0.0.0.0"},
		},
		{
			name: "http on custom address",
			env:  map[string]string{"MCP_TRANSPORT": "http", "MCP_PORT": "9001", "MCP_HOST": "127.0.0.1"},
			want: TransportConfig{Type: TransportHTTP, Port: 9001, Host: "127.0.0.1"},
		},
		{
			name:    "unknown transport",
			env:     map[string]string{"MCP_TRANSPORT": "carrier-pigeon"},
			wantErr: "invalid MCP_TRANSPORT",
		},
		{
			name:    "port not a number",
			env:     map[string]string{"MCP_PORT": "http"},
			wantErr: "must be a number",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"MCP_PORT": "70000"},
			wantErr: "between 1 and 65535",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"MCP_TRANSPORT", "MCP_PORT", "MCP_HOST"} {
				t.Setenv(key, tt.env[key])
			}

			cfg, err := LoadTransportConfig()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestNewHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, transport := range []TransportType{TransportSSE, TransportHTTP} {
		handler, err := NewHandler(srv.MCPServer(), transport)
		require.NoError(t, err, transport)
		require.NotNil(t, handler)
	}

	_, err := NewHandler(srv.MCPServer(), TransportStdio)
	require.Error(t, err)
}

func TestWrapHandler_StreamableHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	handler, err := NewHandler(srv.MCPServer(), TransportHTTP)
	require.NoError(t, err)
	wrapped := WrapHandler(handler, config.RateLimitConfig{PublicPerMinute: 1}, "test", zerolog.Nop())

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		return rec
	}

	rec := post()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"serverInfo"`)

	assert.Equal(t, http.StatusTooManyRequests, post().Code)
}
