package repository

import (
	"time"

	"github.com/chameleon/server/internal/models"
)

// SeedRecipes returns the starter recipes written on first run. They belong
// to the first user in the directory so a fresh install has something to
// show; their images are generated lazily on first view.
func SeedRecipes() []models.Recipe {
	now := time.Now().UTC()
	cookieSource := "Family Recipe"
	pizzaSource := "https://example.com/pizza"

	return []models.Recipe{
		{
			ID:      "1",
			OwnerID: "user_1",
			Title:   "Classic Chocolate Chip Cookies",
			Ingredients: []string{
				"2 1/4 cups all-purpose flour",
				"1 tsp baking soda",
				"1 tsp salt",
				"1 cup butter, softened",
				"3/4 cup granulated sugar",
				"3/4 cup brown sugar",
				"2 large eggs",
				"2 tsp vanilla extract",
				"2 cups chocolate chips",
			},
			Steps: []string{
				"Preheat oven to 375°F.",
				"Mix flour, baking soda, and salt in bowl.",
				"Beat butter and sugars until creamy.",
				"Add eggs and vanilla, beat well.",
				"Gradually blend in flour mixture.",
				"Stir in chocolate chips.",
				"Drop rounded tablespoons onto ungreased sheet.",
				"Bake 9-11 minutes or until golden brown.",
			},
			OriginalSource: &cookieSource,
			SharedWith:     []models.ShareTarget{},
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:      "2",
			OwnerID: "user_1",
			Title:   "Homemade Margherita Pizza",
			Ingredients: []string{
				"1 lb pizza dough",
				"1/2 cup tomato sauce",
				"8 oz fresh mozzarella",
				"Fresh basil leaves",
				"2 tbsp olive oil",
				"Salt to taste",
			},
			Steps: []string{
				"Preheat oven to 500°F with pizza stone.",
				"Roll out dough to 12-inch circle.",
				"Spread tomato sauce evenly.",
				"Tear mozzarella and distribute.",
				"Drizzle with olive oil.",
				"Bake for 10-12 minutes until crust is golden.",
				"Add fresh basil before serving.",
			},
			OriginalSource: &pizzaSource,
			SharedWith:     []models.ShareTarget{},
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}
