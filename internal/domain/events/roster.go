package events

import "slices"

// AddName appends name unless an exact match is already present. The input
// slice is never modified.
func AddName(roster []string, name string) []string {
	if slices.Contains(roster, name) {
		return roster
	}
	out := make([]string, 0, len(roster)+1)
	out = append(out, roster...)
	return append(out, name)
}

// RemoveName drops every entry equal to name and keeps the order of the rest.
func RemoveName(roster []string, name string) []string {
	out := make([]string, 0, len(roster))
	for _, existing := range roster {
		if existing != name {
			out = append(out, existing)
		}
	}
	return out
}
