package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/observability"
	"github.com/chameleon/server/internal/repository"
)

// RecipeService handles recipe business logic: visibility, save/merge,
// sharing, and the write-once image generation flow.
type RecipeService struct {
	recipeRepo repository.RecipeRepo
	groups     *GroupService
	generator  ImageGenerator
	hub        *WebSocketHub
	metrics    *observability.RecipeMetrics

	mu sync.Mutex // serializes full-document writes

	// Per-recipe locks held across the generate+save sequence so concurrent
	// viewers of an ungenerated recipe trigger at most one generation.
	genMu    sync.Mutex
	genLocks map[string]*sync.Mutex
}

// NewRecipeService creates a new RecipeService. The hub may be nil when live
// updates are disabled.
func NewRecipeService(recipeRepo repository.RecipeRepo, groups *GroupService, generator ImageGenerator, hub *WebSocketHub) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		groups:     groups,
		generator:  generator,
		hub:        hub,
		genLocks:   make(map[string]*sync.Mutex),
	}
}

// SetMetrics attaches business metrics instruments
func (s *RecipeService) SetMetrics(metrics *observability.RecipeMetrics) {
	s.metrics = metrics
}

// GetRecipesForUser returns every recipe the user can view, in storage
// order. Visibility is the union of ownership, direct user shares, and group
// shares for groups the user belongs to.
func (s *RecipeService) GetRecipesForUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	groupIDs, err := s.groups.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group memberships: %w", err)
	}

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	visible := make([]*models.Recipe, 0)
	for i := range recipes {
		if recipes[i].VisibleTo(userID, groupIDs) {
			visible = append(visible, &recipes[i])
		}
	}
	return visible, nil
}

// GetRecipeByID returns the recipe regardless of who asks. Callers that act
// on behalf of a user should authorize with CanView first.
func (s *RecipeService) GetRecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

// CanView reports whether the user may see the recipe
func (s *RecipeService) CanView(ctx context.Context, recipe *models.Recipe, userID string) (bool, error) {
	if recipe.OwnerID == userID {
		return true, nil
	}
	groupIDs, err := s.groups.GroupIDsForUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve group memberships: %w", err)
	}
	return recipe.VisibleTo(userID, groupIDs), nil
}

// SaveRecipe creates or updates a recipe and returns the persisted record.
// Unknown id (or none) inserts a fresh recipe owned by the caller. A known id
// merges only the fields present in the request; absent fields keep their
// stored values. Only the owner may update.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID string, req *models.SaveRecipeRequest) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	if req.ID != "" {
		for i := range recipes {
			if recipes[i].ID != req.ID {
				continue
			}
			if !recipes[i].CanEdit(userID) {
				return nil, models.ErrRecipeAccessDenied
			}

			applySaveRequest(&recipes[i], req)
			recipes[i].UpdatedAt = time.Now().UTC()

			if err := s.recipeRepo.WriteAll(ctx, recipes); err != nil {
				return nil, fmt.Errorf("failed to update recipe: %w", err)
			}

			saved := recipes[i]
			if s.metrics != nil {
				s.metrics.RecordRecipeSave(ctx, userID, false)
			}
			s.notifyRecipe(ctx, &saved, WSTypeRecipeSaved)
			return &saved, nil
		}
	}

	// Insert path
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	recipe, err := models.NewRecipe(userID, title)
	if err != nil {
		return nil, err
	}
	applySaveRequest(recipe, req)

	recipes = append(recipes, *recipe)
	if err := s.recipeRepo.WriteAll(ctx, recipes); err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRecipeSave(ctx, userID, true)
	}
	s.notifyRecipe(ctx, recipe, WSTypeRecipeSaved)
	return recipe, nil
}

// DeleteRecipe removes a recipe. Deleting an unknown recipe is a no-op. Only
// the owner may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read recipes: %w", err)
	}

	var deleted *models.Recipe
	filtered := recipes[:0]
	for i := range recipes {
		if recipes[i].ID == id {
			if !recipes[i].CanEdit(userID) {
				return models.ErrRecipeAccessDenied
			}
			r := recipes[i]
			deleted = &r
			continue
		}
		filtered = append(filtered, recipes[i])
	}

	if deleted == nil {
		return nil
	}

	if err := s.recipeRepo.WriteAll(ctx, filtered); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.notifyRecipe(ctx, deleted, WSTypeRecipeDeleted)
	return nil
}

// ShareRecipe grants visibility to a user or group. Sharing with an existing
// target changes nothing. Returns nil without error if the recipe does not
// exist. Only the owner may share.
func (s *RecipeService) ShareRecipe(ctx context.Context, recipeID, ownerID string, targetType models.ShareTargetType, targetID string) (*models.Recipe, error) {
	if !models.IsValidShareTargetType(string(targetType)) || targetID == "" {
		return nil, models.ErrInvalidShareTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	for i := range recipes {
		if recipes[i].ID != recipeID {
			continue
		}
		if !recipes[i].CanEdit(ownerID) {
			return nil, models.ErrRecipeAccessDenied
		}

		if !recipes[i].IsSharedWith(targetType, targetID) {
			recipes[i].SharedWith = append(recipes[i].SharedWith, models.ShareTarget{
				Type: targetType,
				ID:   targetID,
			})
			recipes[i].UpdatedAt = time.Now().UTC()
			if err := s.recipeRepo.WriteAll(ctx, recipes); err != nil {
				return nil, fmt.Errorf("failed to share recipe: %w", err)
			}
			if s.metrics != nil {
				s.metrics.RecordShareChange(ctx, string(targetType))
			}
		}

		shared := recipes[i]
		s.notifyRecipe(ctx, &shared, WSTypeRecipeShared)
		return &shared, nil
	}

	return nil, nil
}

// UnshareRecipe revokes a share. Removing an absent target changes nothing.
// Returns nil without error if the recipe does not exist. Only the owner may
// unshare.
func (s *RecipeService) UnshareRecipe(ctx context.Context, recipeID, ownerID string, targetType models.ShareTargetType, targetID string) (*models.Recipe, error) {
	if !models.IsValidShareTargetType(string(targetType)) || targetID == "" {
		return nil, models.ErrInvalidShareTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	for i := range recipes {
		if recipes[i].ID != recipeID {
			continue
		}
		if !recipes[i].CanEdit(ownerID) {
			return nil, models.ErrRecipeAccessDenied
		}

		targets := recipes[i].SharedWith[:0]
		changed := false
		for _, t := range recipes[i].SharedWith {
			if t.Type == targetType && t.ID == targetID {
				changed = true
				continue
			}
			targets = append(targets, t)
		}
		if changed {
			recipes[i].SharedWith = targets
			recipes[i].UpdatedAt = time.Now().UTC()
			if err := s.recipeRepo.WriteAll(ctx, recipes); err != nil {
				return nil, fmt.Errorf("failed to unshare recipe: %w", err)
			}
			if s.metrics != nil {
				s.metrics.RecordShareChange(ctx, string(targetType))
			}
		}

		unshared := recipes[i]
		s.notifyRecipe(ctx, &unshared, WSTypeRecipeShared)
		return &unshared, nil
	}

	return nil, nil
}

// EnsureRecipeImage returns the recipe with its generated image set,
// generating it on first call. Once set, the image and the theme style it was
// generated under never change, whatever theme later viewers have active.
func (s *RecipeService) EnsureRecipeImage(ctx context.Context, recipeID, themeStyle string) (*models.Recipe, error) {
	ctx, span := observability.StartServiceSpan(ctx, "RecipeService", "EnsureRecipeImage")
	defer span.End()
	span.SetAttributes(observability.RecipeID(recipeID), observability.ThemeStyle(themeStyle))

	lock := s.generationLock(recipeID)
	lock.Lock()
	defer lock.Unlock()

	recipe, err := s.GetRecipeByID(ctx, recipeID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if recipe == nil {
		return nil, models.ErrRecipeNotFound
	}
	if recipe.HasImage() {
		return recipe, nil
	}

	imageURL, err := s.generator.Generate(ctx, recipe, themeStyle)
	if s.metrics != nil {
		s.metrics.RecordImageGeneration(ctx, themeStyle, err == nil)
	}
	if err != nil {
		genErr := &GenerationError{RecipeID: recipeID, Err: err}
		observability.RecordError(span, genErr)
		return nil, genErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipes, err := s.recipeRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	for i := range recipes {
		if recipes[i].ID != recipeID {
			continue
		}
		if recipes[i].HasImage() {
			// Someone else won the race between our read and this write.
			r := recipes[i]
			return &r, nil
		}

		style := themeStyle
		recipes[i].GeneratedImage = &imageURL
		recipes[i].ThemeStyleAtCreation = &style
		recipes[i].UpdatedAt = time.Now().UTC()

		if err := s.recipeRepo.WriteAll(ctx, recipes); err != nil {
			return nil, fmt.Errorf("failed to save generated image: %w", err)
		}

		saved := recipes[i]
		s.notifyRecipe(ctx, &saved, WSTypeRecipeSaved)
		return &saved, nil
	}

	return nil, models.ErrRecipeNotFound
}

func (s *RecipeService) generationLock(recipeID string) *sync.Mutex {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	lock, ok := s.genLocks[recipeID]
	if !ok {
		lock = &sync.Mutex{}
		s.genLocks[recipeID] = lock
	}
	return lock
}

// applySaveRequest copies the fields present in the request onto the recipe
func applySaveRequest(recipe *models.Recipe, req *models.SaveRecipeRequest) {
	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Steps != nil {
		recipe.Steps = *req.Steps
	}
	if req.OriginalSource != nil {
		recipe.OriginalSource = req.OriginalSource
	}
}

// notifyRecipe sends the event to everyone who can currently see the recipe
func (s *RecipeService) notifyRecipe(ctx context.Context, recipe *models.Recipe, msgType string) {
	if s.hub == nil {
		return
	}

	msg := WSMessage{Type: msgType, Payload: recipe}
	sent := map[string]bool{recipe.OwnerID: true}
	s.hub.SendToUser(recipe.OwnerID, msg)

	for _, t := range recipe.SharedWith {
		switch t.Type {
		case models.ShareTargetUser:
			if !sent[t.ID] {
				sent[t.ID] = true
				s.hub.SendToUser(t.ID, msg)
			}
		case models.ShareTargetGroup:
			s.hub.BroadcastToTopic(GroupTopic(t.ID), msg)
		}
	}
}
