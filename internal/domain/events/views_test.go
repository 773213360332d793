package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalendarView_DefaultsDayEdges(t *testing.T) {
	view := CalendarView(Event{ID: "E1", Title: "Picnic", Date: "2024-06-01"})

	require.Equal(t, "2024-06-01T00:00", view.Start)
	require.Equal(t, "2024-06-01T23:59", view.End)
	require.NotNil(t, view.Volunteers)
	require.Empty(t, view.Volunteers)
}

func TestCalendarView_UsesTimes(t *testing.T) {
	view := CalendarView(Event{ID: "E1", Date: "2024-06-01", StartTime: "11:00", EndTime: "14:30", Volunteers: []string{"Ann"}})

	require.Equal(t, "2024-06-01T11:00", view.Start)
	require.Equal(t, "2024-06-01T14:30", view.End)
	require.Equal(t, []string{"Ann"}, view.Volunteers)
}

func TestCalendarView_VolunteersNeverNullInJSON(t *testing.T) {
	data, err := json.Marshal(CalendarView(Event{ID: "E1", Date: "2024-06-01"}))
	require.NoError(t, err)
	require.Contains(t, string(data), `"volunteers":[]`)
}

func TestDetailView_EmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(DetailView(Event{ID: "E1", Title: "Picnic", Date: "2024-06-01"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"E1","title":"Picnic","description":"","date":"2024-06-01","start_time":"","end_time":""}`, string(data))
}

func TestCalendarViews(t *testing.T) {
	require.Empty(t, CalendarViews(nil))
	require.NotNil(t, CalendarViews(nil))
	require.Len(t, CalendarViews([]Event{{ID: "a", Date: "2024-06-01"}, {ID: "b", Date: "2024-06-02"}}), 2)
}
