package handlers

import (
	"errors"
	"net/http"

	"github.com/Togather-Foundation/planner/internal/api/problem"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
)

// writeError maps a domain or decoding error onto its problem response. The
// domain message always goes into detail; unknown errors become 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		maxErr       *http.MaxBytesError
		eventInvalid events.ValidationError
		userInvalid  users.ValidationError
	)

	switch {
	case errors.As(err, &maxErr):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Request body too large", err, env,
			problem.WithDetail(err.Error()))
	case errors.As(err, &eventInvalid):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithDetail(eventInvalid.Error()), fieldErrors(eventInvalid.Field, eventInvalid.Message))
	case errors.As(err, &userInvalid):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithDetail(userInvalid.Error()), fieldErrors(userInvalid.Field, userInvalid.Message))
	case errors.Is(err, users.ErrPasswordMismatch), errors.Is(err, errEmptyBody), errors.Is(err, errMalformedJSON):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, users.ErrAdminExists), errors.Is(err, users.ErrUsernameTaken):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Conflict", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrUnauthenticated), errors.Is(err, events.ErrUnauthenticated):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
			problem.WithDetail(err.Error()))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env,
			problem.WithDetail(err.Error()))
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

func fieldErrors(field, message string) problem.Option {
	if field == "" {
		return func(*problem.ProblemDetails) {}
	}
	return problem.WithErrors(map[string]any{field: message})
}
