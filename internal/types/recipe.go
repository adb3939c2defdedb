package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recepti/backend/internal/model"
)

// Recipe is the full recipe representation returned by the API
type Recipe struct {
	ID              uuid.UUID           `json:"id"`
	Slug            string              `json:"slug"`
	Title           string              `json:"title"`
	Lead            string              `json:"lead"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes"`
	Servings        int                 `json:"servings"`
	Difficulty      model.Difficulty    `json:"difficulty"`
	DishGroup       model.DishGroup     `json:"dishGroup"`
	CookingMethod   model.CookingMethod `json:"cookingMethod"`
	Tags            []string            `json:"tags"`
	Ingredients     []model.Ingredient  `json:"ingredients"`
	Steps           []model.Step        `json:"steps"`
	ImageCdnPath    string              `json:"imageCdnPath"`
	Images          *model.Images       `json:"images,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// RecipeListItem is the projection used by the recipe list
type RecipeListItem struct {
	ID              uuid.UUID           `json:"id"`
	Slug            string              `json:"slug"`
	Title           string              `json:"title"`
	Lead            string              `json:"lead"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes"`
	Difficulty      model.Difficulty    `json:"difficulty"`
	DishGroup       model.DishGroup     `json:"dishGroup"`
	CookingMethod   model.CookingMethod `json:"cookingMethod"`
	ImageCdnPath    string              `json:"imageCdnPath"`
	Images          *model.Images       `json:"images,omitempty"`
}

// RecipeFilter narrows the recipe list. Zero values mean "any".
type RecipeFilter struct {
	Query         string              `form:"q"`
	DishGroup     model.DishGroup     `form:"dishGroup" binding:"omitempty,oneof=MAIN DESSERT BREAD APPETIZER SALAD SOUP"`
	Difficulty    model.Difficulty    `form:"difficulty" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	CookingMethod model.CookingMethod `form:"cookingMethod" binding:"omitempty,oneof=BAKE FRY BOIL GRILL NO_COOK"`
	Tag           string              `form:"tag"`
}

// HeroUpload is the result of storing a hero image
type HeroUpload struct {
	CdnPath string `json:"cdnPath"`
}
