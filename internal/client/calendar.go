package client

import (
	"sort"
	"strings"

	"github.com/Togather-Foundation/planner/internal/domain/events"
)

// Day is one date of the calendar with its entries in start order.
type Day struct {
	Date   string
	Events []events.CalendarEvent
}

// GroupByDay buckets calendar entries by the date part of Start. Days come
// back in date order; entries within a day keep their start order.
func GroupByDay(list []events.CalendarEvent) []Day {
	index := map[string]int{}
	var days []Day
	for _, e := range list {
		date, _, _ := strings.Cut(e.Start, "T")
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, Day{Date: date})
		}
		days[i].Events = append(days[i].Events, e)
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	for _, d := range days {
		sort.SliceStable(d.Events, func(i, j int) bool { return d.Events[i].Start < d.Events[j].Start })
	}
	return days
}
