package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAPIHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	OpenAPIHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)

	for _, path := range []string{"/auth/status", "/auth/register", "/auth/login", "/auth/logout", "/auth/me", "/events", "/events/{id}", "/events/{id}/volunteer", "/events.ics"} {
		require.Contains(t, doc.Paths, path)
	}
	require.Contains(t, doc.Paths["/events/{id}/volunteer"], "delete")
}
