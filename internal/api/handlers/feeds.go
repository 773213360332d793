package handlers

import (
	"io"
	"net/http"

	"github.com/Togather-Foundation/planner/internal/domain/events"
)

// FeedsHandler serves the calendar as iCalendar.
type FeedsHandler struct {
	Service *events.Service
	Options events.FeedOptions
	Env     string
}

func NewFeedsHandler(service *events.Service, opts events.FeedOptions, env string) *FeedsHandler {
	return &FeedsHandler{Service: service, Options: opts, Env: env}
}

// Calendar handles GET /api/events.ics, honouring the same start/end range
// as the JSON listing.
func (h *FeedsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), rangeFromRequest(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	body, err := events.RenderICS(list, h.Options)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="planner.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
