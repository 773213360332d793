package client

import (
	"testing"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay(t *testing.T) {
	list := []events.CalendarEvent{
		{ID: "c", Start: "2024-06-02T09:00"},
		{ID: "b", Start: "2024-06-01T15:00"},
		{ID: "a", Start: "2024-06-01T00:00"},
	}

	days := GroupByDay(list)
	require.Len(t, days, 2)
	require.Equal(t, "2024-06-01", days[0].Date)
	require.Equal(t, "a", days[0].Events[0].ID)
	require.Equal(t, "b", days[0].Events[1].ID)
	require.Equal(t, "2024-06-02", days[1].Date)
	require.Len(t, days[1].Events, 1)
}

func TestGroupByDay_Empty(t *testing.T) {
	require.Empty(t, GroupByDay(nil))
}
