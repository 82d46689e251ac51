package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chameleon/server/internal/models"
)

// ThemeHandler serves the built-in theme registry
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// ListThemes returns the five built-in themes
func (h *ThemeHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.ThemeListResponse{Themes: models.SystemThemes()})
}
