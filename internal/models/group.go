package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group represents a set of users recipes can be shared with
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"` // immutable after creation
	Members   []string  `json:"members"` // owner is always added at creation
	CreatedAt time.Time `json:"createdAt"`
}

// NewGroup creates a new group with the owner as its first member
func NewGroup(name, ownerID string) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrGroupNameRequired
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrGroupOwnerRequired
	}

	return &Group{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		Members:   []string{ownerID},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HasMember reports whether the user is in the member list
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember appends the user to the member list if not already present.
// Returns true if the list changed.
func (g *Group) AddMember(userID string) bool {
	if g.HasMember(userID) {
		return false
	}
	g.Members = append(g.Members, userID)
	return true
}

// RemoveMember filters the user out of the member list unconditionally.
// Removing the owner is not guarded here; whether that should be allowed is
// an open product question, so the permissive behavior is kept.
func (g *Group) RemoveMember(userID string) {
	members := g.Members[:0]
	for _, m := range g.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	g.Members = members
}

// Group errors
type GroupError struct {
	Message string
}

func (e GroupError) Error() string {
	return e.Message
}

var (
	ErrGroupNotFound      = GroupError{"group not found"}
	ErrGroupNameRequired  = GroupError{"group name is required"}
	ErrGroupOwnerRequired = GroupError{"group owner is required"}
)
