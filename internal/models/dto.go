package models

import "time"

// SaveRecipeRequest is the request body for creating or updating a recipe.
// On the update path only the fields present in the request are applied; the
// stored values of absent fields survive.
type SaveRecipeRequest struct {
	ID             string    `json:"id,omitempty"`
	Title          *string   `json:"title,omitempty"`
	Ingredients    *[]string `json:"ingredients,omitempty"`
	Steps          *[]string `json:"steps,omitempty"`
	OriginalSource *string   `json:"originalSource,omitempty"`
}

// ShareRequest names the target of a share or unshare operation
type ShareRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
}

// GenerateImageRequest asks for the write-once recipe image
type GenerateImageRequest struct {
	ThemeStyle string `json:"themeStyle"`
}

// CreateGroupRequest is the request body for creating a group
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest is the request body for adding a group member
type AddMemberRequest struct {
	UserID string `json:"userId"`
}

// IngestURLRequest asks the parser to extract a recipe draft from a URL
type IngestURLRequest struct {
	URL string `json:"url"`
}

// ParsedRecipe is an unsaved recipe draft produced by ingestion. The client
// edits it and then submits it through the normal save path.
type ParsedRecipe struct {
	Title          string   `json:"title"`
	Ingredients    []string `json:"ingredients"`
	Steps          []string `json:"steps"`
	OriginalSource string   `json:"originalSource"`
}

// RecipeListResponse wraps the caller's visible recipe set
type RecipeListResponse struct {
	Recipes []*Recipe `json:"recipes"`
}

// GroupListResponse wraps a list of groups
type GroupListResponse struct {
	Groups []*Group `json:"groups"`
}

// UserListResponse wraps the user directory
type UserListResponse struct {
	Users []User `json:"users"`
}

// ThemeListResponse wraps the theme registry
type ThemeListResponse struct {
	Themes []Theme `json:"themes"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the generic error body
type ErrorResponse struct {
	Error string `json:"error"`
}
