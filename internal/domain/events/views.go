package events

const (
	dayStart = "00:00"
	dayEnd   = "23:59"
)

// CalendarEvent is the shape a calendar widget consumes.
type CalendarEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Volunteers  []string `json:"volunteers"`
}

// EventDetail is the shape of the edit form. Missing optional fields are "".
type EventDetail struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// CalendarView projects an event for the calendar. Events without times
// span the whole day.
func CalendarView(e Event) CalendarEvent {
	start := e.StartTime
	if start == "" {
		start = dayStart
	}
	end := e.EndTime
	if end == "" {
		end = dayEnd
	}
	volunteers := e.Volunteers
	if volunteers == nil {
		volunteers = []string{}
	}
	return CalendarEvent{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Date + "T" + start,
		End:         e.Date + "T" + end,
		Volunteers:  volunteers,
	}
}

func CalendarViews(list []Event) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(list))
	for _, e := range list {
		out = append(out, CalendarView(e))
	}
	return out
}

// DetailView is the edit-form shape: the stored fields without the roster.
func DetailView(e Event) EventDetail {
	return EventDetail{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
	}
}
