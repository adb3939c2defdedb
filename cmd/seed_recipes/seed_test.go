package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/model"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/slug"
	"github.com/pageza/recepti/backend/internal/storage"
	"github.com/pageza/recepti/backend/internal/testhelpers"
	"github.com/pageza/recepti/backend/internal/types"
)

func TestSampleRecipesParse(t *testing.T) {
	samples, err := parseSeed(sampleRecipes)
	require.NoError(t, err)
	require.Len(t, samples, 8)

	for _, r := range samples {
		assert.True(t, slug.Valid(r.Slug), r.Slug)
		assert.Equal(t, r.Slug, slug.Make(r.Title), "slug of %q", r.Title)
		assert.NotEmpty(t, r.Ingredients, r.Slug)
		assert.NotEmpty(t, r.Steps, r.Slug)
		assert.Contains(t, r.Image, "/recipes/"+r.Slug+"/hero.")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)
	svc := service.NewRecipeService(db, service.NewImageNormalizer(root, cache.NewMemoryCache(16, time.Minute), ""), nil)

	samples, err := parseSeed(sampleRecipes)
	require.NoError(t, err)

	ctx := context.Background()
	res, err := seed(ctx, svc, samples, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, seedResult{Created: 8}, res)

	res, err = seed(ctx, svc, samples, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, seedResult{Updated: 8}, res)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(8), count)

	recipe, err := svc.GetRecipeBySlug(ctx, "palacinke")
	require.NoError(t, err)
	assert.Equal(t, "Palačinke", recipe.Title)
	assert.Equal(t, "1", recipe.Ingredients[3].Amount.String())
	require.NotNil(t, recipe.Ingredients[3].Unit)
	assert.Equal(t, "prstohvat", *recipe.Ingredients[3].Unit)

	list, err := svc.ListRecipes(ctx, types.RecipeFilter{DishGroup: model.DishGroupDessert})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
