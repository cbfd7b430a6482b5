package models

import "slices"

// Group represents a named circle of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// Owner is the member email of the group's creator. The owner may
	// rename or delete the group and manage its members.
	Owner string

	// Members is the list of member emails. Membership is a set; the
	// order only affects default display. A group always has at least
	// one member while it exists.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether email is currently in the member set.
func (g *Group) HasMember(email string) bool {
	return slices.Contains(g.Members, email)
}
