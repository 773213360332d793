package events

import (
	"context"
	"time"
)

// Event is a calendar entry with its volunteer roster. Date is YYYY-MM-DD;
// StartTime and EndTime are HH:MM or empty.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Volunteers  []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventInput carries the admin-editable fields of an event.
type EventInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,isodate"`
	StartTime   string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime     string `json:"end_time" validate:"omitempty,hhmm"`
}

// RangeFilter bounds List by date. Either side may be empty.
type RangeFilter struct {
	Start string
	End   string
}

// DateRange is a normalized RangeFilter with inclusive YYYY-MM-DD bounds.
type DateRange struct {
	From string
	To   string
}

// CreateParams is a validated event ready to insert. ID is assigned by the service.
type CreateParams struct {
	ID          string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	CreatedBy   string
}

// UpdateParams replaces every editable field. The roster is untouched.
type UpdateParams struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
}

// RosterFunc computes a new roster from the current one. It runs while the
// event row is locked.
type RosterFunc func(current []string) []string

type Repository interface {
	List(ctx context.Context, r DateRange) ([]Event, error)
	// GetByID returns ErrNotFound when the event does not exist.
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id string) error
	// UpdateVolunteers applies fn to the stored roster atomically.
	UpdateVolunteers(ctx context.Context, id string, fn RosterFunc) (*Event, error)
}
