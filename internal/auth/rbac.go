package auth

import "strings"

type Role string

// RoleAdmin is the only role the planner issues. Visitors never hold a token.
const RoleAdmin Role = "admin"

func HasRole(role string, allowed ...Role) bool {
	current := Role(strings.ToLower(strings.TrimSpace(role)))
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}
