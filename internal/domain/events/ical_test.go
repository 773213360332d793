package events

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"
)

func TestRenderICS(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	list := []Event{
		{ID: "01HYX3KQW7ERTV9XNBM2P8QJZF", Title: "Picnic", Description: "Bring snacks", Date: "2024-06-01", StartTime: "11:00", EndTime: "14:00", Volunteers: []string{"Ann", "Bob"}},
		{ID: "01HYX3KQW7ERTV9XNBM2P8QJZG", Title: "Cleanup", Date: "2024-06-02"},
	}

	out, err := RenderICS(list, FeedOptions{
		ProductID: "-//Test//Planner//EN",
		Name:      "Planner",
		Location:  toronto,
		Now:       func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	require.Contains(t, out, "METHOD:PUBLISH")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	parsed := cal.Events()
	require.Len(t, parsed, 2)

	picnic := parsed[0]
	require.Equal(t, "01HYX3KQW7ERTV9XNBM2P8QJZF", picnic.Id())
	require.Equal(t, "Picnic", picnic.GetProperty(ical.ComponentPropertySummary).Value)
	require.Contains(t, picnic.GetProperty(ical.ComponentPropertyDescription).Value, "Volunteers: Ann")

	start, err := picnic.GetStartAt()
	require.NoError(t, err)
	require.True(t, start.Equal(time.Date(2024, 6, 1, 11, 0, 0, 0, toronto)))

	end, err := picnic.GetEndAt()
	require.NoError(t, err)
	require.True(t, end.Equal(time.Date(2024, 6, 1, 14, 0, 0, 0, toronto)))

	cleanup := parsed[1]
	dtstart := cleanup.GetProperty(ical.ComponentPropertyDtStart)
	require.NotNil(t, dtstart)
	require.Equal(t, "20240602", dtstart.Value)
}

func TestRenderICS_Empty(t *testing.T) {
	out, err := RenderICS(nil, FeedOptions{})
	require.NoError(t, err)
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.NotContains(t, out, "BEGIN:VEVENT")
}

func TestRenderICS_BadDate(t *testing.T) {
	_, err := RenderICS([]Event{{ID: "x", Date: "bogus"}}, FeedOptions{})
	require.Error(t, err)
}
