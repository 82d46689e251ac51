package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShareTargetType says whether a share grants visibility to a single user or a group
type ShareTargetType string

const (
	ShareTargetUser  ShareTargetType = "user"
	ShareTargetGroup ShareTargetType = "group"
)

// IsValidShareTargetType checks if a share target type is valid
func IsValidShareTargetType(t string) bool {
	switch ShareTargetType(t) {
	case ShareTargetUser, ShareTargetGroup:
		return true
	}
	return false
}

// ShareTarget names a grantee of recipe visibility
type ShareTarget struct {
	Type ShareTargetType `json:"type"`
	ID   string          `json:"id"`
}

// Recipe represents a captured or imported recipe
type Recipe struct {
	ID                   string        `json:"id"`
	OwnerID              string        `json:"ownerId"`
	Title                string        `json:"title"`
	Ingredients          []string      `json:"ingredients"`
	Steps                []string      `json:"steps"`
	OriginalSource       *string       `json:"originalSource,omitempty"`
	SharedWith           []ShareTarget `json:"sharedWith"`
	GeneratedImage       *string       `json:"generatedImage"`       // write-once: never overwritten once set
	ThemeStyleAtCreation *string       `json:"themeStyleAtCreation"` // set in the same update as GeneratedImage
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// NewRecipe creates a new recipe owned by the given user
func NewRecipe(ownerID, title string) (*Recipe, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrRecipeOwnerRequired
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrRecipeTitleRequired
	}

	now := time.Now().UTC()

	return &Recipe{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(title),
		SharedWith: []ShareTarget{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// HasImage reports whether the write-once generated image has been set
func (r *Recipe) HasImage() bool {
	return r.GeneratedImage != nil && *r.GeneratedImage != ""
}

// IsSharedWith reports whether the exact (type, id) pair is in the share list
func (r *Recipe) IsSharedWith(targetType ShareTargetType, targetID string) bool {
	for _, t := range r.SharedWith {
		if t.Type == targetType && t.ID == targetID {
			return true
		}
	}
	return false
}

// VisibleTo checks if a user can view this recipe. Visibility is the union of
// ownership, a direct user share, and a group share for any group the user
// belongs to. groupIDs holds the caller's group memberships.
func (r *Recipe) VisibleTo(userID string, groupIDs map[string]bool) bool {
	if r.OwnerID == userID {
		return true
	}
	for _, t := range r.SharedWith {
		switch t.Type {
		case ShareTargetUser:
			if t.ID == userID {
				return true
			}
		case ShareTargetGroup:
			if groupIDs[t.ID] {
				return true
			}
		}
	}
	return false
}

// CanEdit checks if a user can edit this recipe
func (r *Recipe) CanEdit(userID string) bool {
	return r.OwnerID == userID
}

// Recipe errors
type RecipeError struct {
	Message string
}

func (e RecipeError) Error() string {
	return e.Message
}

var (
	ErrRecipeNotFound      = RecipeError{"recipe not found"}
	ErrRecipeOwnerRequired = RecipeError{"recipe owner is required"}
	ErrRecipeTitleRequired = RecipeError{"recipe title is required"}
	ErrRecipeAccessDenied  = RecipeError{"access denied to recipe"}
	ErrInvalidShareTarget  = RecipeError{"share target must be a user or a group"}
)
