package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/metrics"
)

type volunteerRequest struct {
	Name string `json:"name"`
}

// AddVolunteer handles POST /api/events/{id}/volunteer. No login needed.
func (h *EventsHandler) AddVolunteer(w http.ResponseWriter, r *http.Request) {
	h.changeRoster(w, r, "add", h.Service.AddVolunteer)
}

// RemoveVolunteer handles DELETE /api/events/{id}/volunteer.
func (h *EventsHandler) RemoveVolunteer(w http.ResponseWriter, r *http.Request) {
	h.changeRoster(w, r, "remove", h.Service.RemoveVolunteer)
}

func (h *EventsHandler) changeRoster(w http.ResponseWriter, r *http.Request, operation string, apply func(ctx context.Context, id, name string) (*events.Event, error)) {
	var req volunteerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := apply(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.VolunteerChanges.WithLabelValues(operation).Inc()
	writeJSON(w, http.StatusOK, events.CalendarView(*event))
}
