package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/planner/internal/api/middleware"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/metrics"
)

// EventsHandler serves event CRUD under /api/events.
type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func rangeFromRequest(r *http.Request) events.RangeFilter {
	query := r.URL.Query()
	return events.RangeFilter{Start: query.Get("start"), End: query.Get("end")}
}

// List handles GET /api/events?start=&end=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), rangeFromRequest(r))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, events.CalendarViews(list))
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, events.DetailView(*event))
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.EventMutations.WithLabelValues("create").Inc()
	writeJSON(w, http.StatusCreated, events.CalendarView(*event))
}

// Update handles PUT /api/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id"), input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.EventMutations.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, events.CalendarView(*event))
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remove(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	metrics.EventMutations.WithLabelValues("delete").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "event deleted"})
}
