package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pageza/recepti/backend/internal/model"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/types"
)

//go:embed recipes.yaml
var sampleRecipes []byte

type seedIngredient struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
	Unit   string  `yaml:"unit"`
}

type seedRecipe struct {
	Slug            string              `yaml:"slug"`
	Title           string              `yaml:"title"`
	Lead            string              `yaml:"lead"`
	PrepTimeMinutes int                 `yaml:"prepTimeMinutes"`
	Servings        int                 `yaml:"servings"`
	Difficulty      model.Difficulty    `yaml:"difficulty"`
	DishGroup       model.DishGroup     `yaml:"dishGroup"`
	CookingMethod   model.CookingMethod `yaml:"cookingMethod"`
	Tags            []string            `yaml:"tags"`
	Ingredients     []seedIngredient    `yaml:"ingredients"`
	Steps           []string            `yaml:"steps"`
	Image           string              `yaml:"image"`
}

func parseSeed(data []byte) ([]seedRecipe, error) {
	var recipes []seedRecipe
	if err := yaml.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse seed recipes: %w", err)
	}
	return recipes, nil
}

func (r seedRecipe) ingredients() []model.Ingredient {
	out := make([]model.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		out[i] = model.Ingredient{Name: ing.Name, Amount: model.NumberAmount(ing.Amount)}
		if ing.Unit != "" {
			unit := ing.Unit
			out[i].Unit = &unit
		}
	}
	return out
}

func (r seedRecipe) steps() []model.Step {
	out := make([]model.Step, len(r.Steps))
	for i, text := range r.Steps {
		out[i] = model.Step{Text: text}
	}
	return out
}

func (r seedRecipe) images() *model.Images {
	images := model.Images{}.WithHeroPath(r.Image)
	return &images
}

func (r seedRecipe) createRequest() *types.CreateRecipeRequest {
	slug := r.Slug
	return &types.CreateRecipeRequest{
		Slug:            &slug,
		Title:           r.Title,
		Lead:            r.Lead,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		DishGroup:       r.DishGroup,
		CookingMethod:   r.CookingMethod,
		Tags:            r.Tags,
		Ingredients:     r.ingredients(),
		Steps:           r.steps(),
		ImageCdnPath:    r.Image,
		Images:          r.images(),
	}
}

func (r seedRecipe) updateRequest() *types.UpdateRecipeRequest {
	tags := r.Tags
	ingredients := r.ingredients()
	steps := r.steps()
	return &types.UpdateRecipeRequest{
		Title:           &r.Title,
		Lead:            &r.Lead,
		PrepTimeMinutes: &r.PrepTimeMinutes,
		Servings:        &r.Servings,
		Difficulty:      &r.Difficulty,
		DishGroup:       &r.DishGroup,
		CookingMethod:   &r.CookingMethod,
		Tags:            &tags,
		Ingredients:     &ingredients,
		Steps:           &steps,
		ImageCdnPath:    &r.Image,
		Images:          r.images(),
	}
}

// seedResult counts what a seed run did
type seedResult struct {
	Created int
	Updated int
}

// seed upserts every recipe by slug, so running it twice leaves the same
// catalog behind.
func seed(ctx context.Context, recipes service.IRecipeService, samples []seedRecipe, log *zap.Logger) (seedResult, error) {
	var res seedResult
	for _, r := range samples {
		_, err := recipes.GetRecipeBySlug(ctx, r.Slug)
		switch {
		case err == nil:
			if _, err := recipes.UpdateRecipe(ctx, r.Slug, r.updateRequest()); err != nil {
				return res, fmt.Errorf("update %s: %w", r.Slug, err)
			}
			res.Updated++
			log.Info("recipe updated", zap.String("slug", r.Slug))
		case errors.Is(err, service.ErrRecipeNotFound):
			if _, err := recipes.CreateRecipe(ctx, r.createRequest()); err != nil {
				return res, fmt.Errorf("create %s: %w", r.Slug, err)
			}
			res.Created++
			log.Info("recipe created", zap.String("slug", r.Slug))
		default:
			return res, fmt.Errorf("lookup %s: %w", r.Slug, err)
		}
	}
	return res, nil
}
