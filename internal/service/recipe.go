package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recepti/backend/internal/model"
	"github.com/pageza/recepti/backend/internal/slug"
	"github.com/pageza/recepti/backend/internal/types"
)

// MaxSlugAttempts bounds how often a create is retried after losing a slug
// race to a concurrent insert.
const MaxSlugAttempts = 5

const normalizeConcurrency = 8

var listColumns = []string{
	"id", "slug", "title", "lead", "prep_time_minutes", "difficulty",
	"dish_group", "cooking_method", "image_cdn_path", "images", "created_at",
}

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images *ImageNormalizer
	log    *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images *ImageNormalizer, log *zap.Logger) *RecipeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{db: db, images: images, log: log}
}

// likeEscaper makes user input match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListRecipes returns list items, newest first, with image paths normalized
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]types.RecipeListItem, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{}).Select(listColumns)

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(lead) LIKE ? ESCAPE '\'`, like, like)
	}
	if filter.DishGroup != "" {
		query = query.Where("dish_group = ?", filter.DishGroup)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.CookingMethod != "" {
		query = query.Where("cooking_method = ?", filter.CookingMethod)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		if s.db.Dialector.Name() == "postgres" {
			contains, err := json.Marshal([]string{tag})
			if err != nil {
				return nil, fmt.Errorf("encode tag filter: %w", err)
			}
			query = query.Where("tags @> ?::jsonb", string(contains))
		} else {
			query = query.Where("EXISTS (SELECT 1 FROM json_each(recipes.tags) WHERE json_each.value = ?)", tag)
		}
	}

	var recipes []model.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	items := make([]types.RecipeListItem, len(recipes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeConcurrency)
	for i := range recipes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = s.toListItem(gctx, &recipes[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRecipeBySlug returns the full recipe or ErrRecipeNotFound
func (s *RecipeService) GetRecipeBySlug(ctx context.Context, recipeSlug string) (*types.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).Where("slug = ?", recipeSlug).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe %q: %w", recipeSlug, err)
	}
	return s.toRecipe(ctx, &recipe), nil
}

// CreateRecipe stores a new recipe under the first free slug derived from
// the requested slug or the title. A uniqueness violation from a concurrent
// insert resumes probing after the slug that was lost.
func (s *RecipeService) CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*types.Recipe, error) {
	source := req.Title
	if req.Slug != nil {
		source = *req.Slug
	}
	base := slug.Make(source)
	if base == "" {
		return nil, ErrSlugGenerationFailed
	}

	images := model.Images{}.WithHeroPath(req.ImageCdnPath)
	if req.Images != nil {
		images = *req.Images
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	recipe := model.Recipe{
		Title:           req.Title,
		Lead:            req.Lead,
		PrepTimeMinutes: req.PrepTimeMinutes,
		Servings:        req.Servings,
		Difficulty:      req.Difficulty,
		DishGroup:       req.DishGroup,
		CookingMethod:   req.CookingMethod,
		Tags:            model.StringArray(tags),
		Ingredients:     datatypes.NewJSONType(req.Ingredients),
		Steps:           datatypes.NewJSONType(req.Steps),
		ImageCdnPath:    req.ImageCdnPath,
		Images:          datatypes.NewJSONType(images),
	}

	db := s.db.WithContext(ctx)
	next := 1
	for attempt := 1; attempt <= MaxSlugAttempts; attempt++ {
		candidate, n, err := s.firstFreeSlug(db, base, next)
		if err != nil {
			return nil, err
		}
		recipe.Slug = candidate

		err = db.Create(&recipe).Error
		if err == nil {
			return s.toRecipe(ctx, &recipe), nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("create recipe: %w", err)
		}
		s.log.Info("slug taken concurrently, retrying",
			zap.String("slug", candidate), zap.Int("attempt", attempt))
		next = n + 1
	}
	return nil, ErrSlugConflict
}

// firstFreeSlug probes base, base-2, ... starting at suffix from and returns
// the first unused candidate together with its suffix.
func (s *RecipeService) firstFreeSlug(db *gorm.DB, base string, from int) (string, int, error) {
	for n := from; ; n++ {
		candidate := slug.Candidate(base, n)
		var count int64
		if err := db.Model(&model.Recipe{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", 0, fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, n, nil
		}
	}
}

// UpdateRecipe applies a partial patch inside one transaction. When only
// imageCdnPath changes, the stored images keep every key and only the hero
// path is replaced.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeSlug string, req *types.UpdateRecipeRequest) (*types.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.Where("slug = ?", recipeSlug).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		applyPatch(&recipe, req)
		return tx.Save(&recipe).Error
	})
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update recipe %q: %w", recipeSlug, err)
	}
	return s.toRecipe(ctx, &recipe), nil
}

func applyPatch(recipe *model.Recipe, req *types.UpdateRecipeRequest) {
	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Lead != nil {
		recipe.Lead = *req.Lead
	}
	if req.PrepTimeMinutes != nil {
		recipe.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Difficulty != nil {
		recipe.Difficulty = *req.Difficulty
	}
	if req.DishGroup != nil {
		recipe.DishGroup = *req.DishGroup
	}
	if req.CookingMethod != nil {
		recipe.CookingMethod = *req.CookingMethod
	}
	if req.Tags != nil {
		recipe.Tags = model.StringArray(*req.Tags)
	}
	if req.Ingredients != nil {
		recipe.Ingredients = datatypes.NewJSONType(*req.Ingredients)
	}
	if req.Steps != nil {
		recipe.Steps = datatypes.NewJSONType(*req.Steps)
	}
	if req.ImageCdnPath != nil {
		recipe.ImageCdnPath = *req.ImageCdnPath
	}

	switch {
	case req.Images != nil:
		recipe.Images = datatypes.NewJSONType(*req.Images)
	case req.ImageCdnPath != nil:
		recipe.Images = datatypes.NewJSONType(recipe.Images.Data().WithHeroPath(*req.ImageCdnPath))
	}
}

// DeleteRecipe removes the recipe and returns it as it was
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeSlug string) (*types.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slug = ?", recipeSlug).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete recipe %q: %w", recipeSlug, err)
	}
	return s.toRecipe(ctx, &recipe), nil
}

func (s *RecipeService) toRecipe(ctx context.Context, r *model.Recipe) *types.Recipe {
	images, hero := s.images.NormalizeImages(ctx, r.Images.Data(), r.ImageCdnPath)

	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	ingredients := r.Ingredients.Data()
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}
	steps := r.Steps.Data()
	if steps == nil {
		steps = []model.Step{}
	}

	return &types.Recipe{
		ID:              r.ID,
		Slug:            r.Slug,
		Title:           r.Title,
		Lead:            r.Lead,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		DishGroup:       r.DishGroup,
		CookingMethod:   r.CookingMethod,
		Tags:            tags,
		Ingredients:     ingredients,
		Steps:           steps,
		ImageCdnPath:    hero,
		Images:          &images,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (s *RecipeService) toListItem(ctx context.Context, r *model.Recipe) types.RecipeListItem {
	images, hero := s.images.NormalizeImages(ctx, r.Images.Data(), r.ImageCdnPath)
	return types.RecipeListItem{
		ID:              r.ID,
		Slug:            r.Slug,
		Title:           r.Title,
		Lead:            r.Lead,
		PrepTimeMinutes: r.PrepTimeMinutes,
		Difficulty:      r.Difficulty,
		DishGroup:       r.DishGroup,
		CookingMethod:   r.CookingMethod,
		ImageCdnPath:    hero,
		Images:          &images,
	}
}
