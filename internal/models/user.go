package models

// User represents an account in the fixed, externally-managed user directory.
// This service never creates or mutates users.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// DefaultUsers returns the seed user directory
func DefaultUsers() []User {
	return []User{
		{ID: "user_1", Name: "Chef Gabe", Email: "gabe@example.com", Avatar: "👨‍🍳"},
		{ID: "user_2", Name: "Mom", Email: "mom@example.com", Avatar: "👵"},
		{ID: "user_3", Name: "Roommate", Email: "roomie@example.com", Avatar: "🧢"},
		{ID: "user_4", Name: "Bestie", Email: "bestie@example.com", Avatar: "✨"},
	}
}

// User errors
type UserError struct {
	Message string
}

func (e UserError) Error() string {
	return e.Message
}

var (
	ErrUserNotFound = UserError{"user not found"}
)
