package types

import "github.com/pageza/recepti/backend/internal/model"

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Slug            *string             `json:"slug" binding:"omitnil,min=1"`
	Title           string              `json:"title" binding:"required,min=3"`
	Lead            string              `json:"lead" binding:"required,min=10"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes" binding:"required,min=1,max=1440"`
	Servings        int                 `json:"servings" binding:"required,min=1,max=100"`
	Difficulty      model.Difficulty    `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	DishGroup       model.DishGroup     `json:"dishGroup" binding:"required,oneof=MAIN DESSERT BREAD APPETIZER SALAD SOUP"`
	CookingMethod   model.CookingMethod `json:"cookingMethod" binding:"required,oneof=BAKE FRY BOIL GRILL NO_COOK"`
	Tags            []string            `json:"tags" binding:"omitempty,dive,required"`
	Ingredients     []model.Ingredient  `json:"ingredients" binding:"required,min=1,dive"`
	Steps           []model.Step        `json:"steps" binding:"required,min=1,dive"`
	ImageCdnPath    string              `json:"imageCdnPath" binding:"required"`
	Images          *model.Images       `json:"images" binding:"omitempty"`
}

// UpdateRecipeRequest is a partial patch; nil fields are left unchanged
type UpdateRecipeRequest struct {
	Title           *string              `json:"title" binding:"omitnil,min=3"`
	Lead            *string              `json:"lead" binding:"omitnil,min=10"`
	PrepTimeMinutes *int                 `json:"prepTimeMinutes" binding:"omitnil,min=1,max=1440"`
	Servings        *int                 `json:"servings" binding:"omitnil,min=1,max=100"`
	Difficulty      *model.Difficulty    `json:"difficulty" binding:"omitnil,oneof=EASY MEDIUM HARD"`
	DishGroup       *model.DishGroup     `json:"dishGroup" binding:"omitnil,oneof=MAIN DESSERT BREAD APPETIZER SALAD SOUP"`
	CookingMethod   *model.CookingMethod `json:"cookingMethod" binding:"omitnil,oneof=BAKE FRY BOIL GRILL NO_COOK"`
	Tags            *[]string            `json:"tags" binding:"omitnil,dive,required"`
	Ingredients     *[]model.Ingredient  `json:"ingredients" binding:"omitnil,min=1,dive"`
	Steps           *[]model.Step        `json:"steps" binding:"omitnil,min=1,dive"`
	ImageCdnPath    *string              `json:"imageCdnPath" binding:"omitnil,min=1"`
	Images          *model.Images        `json:"images" binding:"omitempty"`
}

// Empty reports whether the patch changes nothing
func (r *UpdateRecipeRequest) Empty() bool {
	return r.Title == nil && r.Lead == nil && r.PrepTimeMinutes == nil && r.Servings == nil &&
		r.Difficulty == nil && r.DishGroup == nil && r.CookingMethod == nil && r.Tags == nil &&
		r.Ingredients == nil && r.Steps == nil && r.ImageCdnPath == nil && r.Images == nil
}
