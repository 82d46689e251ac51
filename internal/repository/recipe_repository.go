package repository

import (
	"context"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/models"
)

// RecipeRepo defines document-level access to the recipe collection
type RecipeRepo interface {
	ReadAll(ctx context.Context) ([]models.Recipe, error)
	WriteAll(ctx context.Context, recipes []models.Recipe) error
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
}

// RecipeRepository owns the persisted recipe collection. No other component
// reads or writes the backing document.
type RecipeRepository struct {
	collection *Collection[models.Recipe]
}

// NewRecipeRepository creates a recipe repository seeded with the starter
// recipes on first use.
func NewRecipeRepository(store kv.Store) *RecipeRepository {
	return &RecipeRepository{
		collection: NewCollection(store, RecipesKey, SeedRecipes()),
	}
}

// ReadAll returns every stored recipe in storage order
func (r *RecipeRepository) ReadAll(ctx context.Context) ([]models.Recipe, error) {
	return r.collection.ReadAll(ctx)
}

// WriteAll overwrites the full recipe collection
func (r *RecipeRepository) WriteAll(ctx context.Context, recipes []models.Recipe) error {
	return r.collection.WriteAll(ctx, recipes)
}

// GetByID returns the recipe with the given id, or nil if absent. There is no
// visibility filtering at this level.
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	recipes, err := r.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], nil
		}
	}
	return nil, nil
}
