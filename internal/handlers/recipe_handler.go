package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/services"
)

// RecipeHandler handles recipe API endpoints
type RecipeHandler struct {
	recipeService *services.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

// ListRecipes returns every recipe the caller can view
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipes, err := h.recipeService.GetRecipesForUser(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to list recipes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.RecipeListResponse{Recipes: recipes})
}

// SaveRecipe creates a recipe or merges an update into an existing one
func (h *RecipeHandler) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SaveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recipe, err := h.recipeService.SaveRecipe(r.Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, models.ErrRecipeTitleRequired) {
			http.Error(w, "Recipe title required", http.StatusBadRequest)
			return
		}
		if errors.Is(err, models.ErrRecipeAccessDenied) {
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}
		http.Error(w, "Failed to save recipe", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if req.ID == "" || req.ID != recipe.ID {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(recipe)
}

// GetRecipe returns a recipe by ID if the caller can view it
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipeID := chi.URLParam(r, "id")
	if recipeID == "" {
		http.Error(w, "Recipe ID required", http.StatusBadRequest)
		return
	}

	recipe, err := h.recipeService.GetRecipeByID(r.Context(), recipeID)
	if err != nil {
		http.Error(w, "Failed to get recipe", http.StatusInternalServerError)
		return
	}
	if recipe == nil {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}

	canView, err := h.recipeService.CanView(r.Context(), recipe, user.ID)
	if err != nil {
		http.Error(w, "Failed to get recipe", http.StatusInternalServerError)
		return
	}
	if !canView {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipe)
}

// DeleteRecipe removes a recipe owned by the caller
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipeID := chi.URLParam(r, "id")
	if recipeID == "" {
		http.Error(w, "Recipe ID required", http.StatusBadRequest)
		return
	}

	if err := h.recipeService.DeleteRecipe(r.Context(), recipeID, user.ID); err != nil {
		if errors.Is(err, models.ErrRecipeAccessDenied) {
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}
		http.Error(w, "Failed to delete recipe", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShareRecipe grants recipe visibility to a user or group
func (h *RecipeHandler) ShareRecipe(w http.ResponseWriter, r *http.Request) {
	h.updateShare(w, r, h.recipeService.ShareRecipe)
}

// UnshareRecipe revokes recipe visibility from a user or group
func (h *RecipeHandler) UnshareRecipe(w http.ResponseWriter, r *http.Request) {
	h.updateShare(w, r, h.recipeService.UnshareRecipe)
}

type shareOp func(ctx context.Context, recipeID, ownerID string, targetType models.ShareTargetType, targetID string) (*models.Recipe, error)

func (h *RecipeHandler) updateShare(w http.ResponseWriter, r *http.Request, op shareOp) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipeID := chi.URLParam(r, "id")
	if recipeID == "" {
		http.Error(w, "Recipe ID required", http.StatusBadRequest)
		return
	}

	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recipe, err := op(r.Context(), recipeID, user.ID, models.ShareTargetType(req.TargetType), req.TargetID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidShareTarget) {
			http.Error(w, "Share target must be a user or a group", http.StatusBadRequest)
			return
		}
		if errors.Is(err, models.ErrRecipeAccessDenied) {
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}
		http.Error(w, "Failed to update shares", http.StatusInternalServerError)
		return
	}
	if recipe == nil {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipe)
}

// GenerateImage ensures the recipe has its write-once generated image
func (h *RecipeHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recipeID := chi.URLParam(r, "id")
	if recipeID == "" {
		http.Error(w, "Recipe ID required", http.StatusBadRequest)
		return
	}

	var req models.GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.IsValidTheme(req.ThemeStyle) {
		http.Error(w, models.ErrInvalidTheme.Error(), http.StatusBadRequest)
		return
	}

	recipe, err := h.recipeService.GetRecipeByID(r.Context(), recipeID)
	if err != nil {
		http.Error(w, "Failed to get recipe", http.StatusInternalServerError)
		return
	}
	if recipe == nil {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}

	canView, err := h.recipeService.CanView(r.Context(), recipe, user.ID)
	if err != nil {
		http.Error(w, "Failed to get recipe", http.StatusInternalServerError)
		return
	}
	if !canView {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	recipe, err = h.recipeService.EnsureRecipeImage(r.Context(), recipeID, req.ThemeStyle)
	if err != nil {
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			http.Error(w, "Image generation failed", http.StatusBadGateway)
			return
		}
		if errors.Is(err, models.ErrRecipeNotFound) {
			http.Error(w, "Recipe not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to generate image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipe)
}
