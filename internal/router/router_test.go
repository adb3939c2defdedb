package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recepti/backend/internal/api"
	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/storage"
	"github.com/pageza/recepti/backend/internal/testhelpers"
)

const recipeJSON = `{
	"title": "Palačinke",
	"lead": "Klasične tanke palačinke za slatko ili slano.",
	"prepTimeMinutes": 30,
	"servings": 8,
	"difficulty": "EASY",
	"dishGroup": "DESSERT",
	"cookingMethod": "FRY",
	"ingredients": [{"name": "jaja", "amount": 2, "unit": "kom"}],
	"steps": [{"text": "Umutite jaja s mlijekom."}],
	"imageCdnPath": "/recipes/palacinke/hero.svg"
}`

func setupRouter(t *testing.T, tokens *service.TokenService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)
	pc := cache.NewMemoryCache(16, time.Minute)
	recipes := service.NewRecipeService(db, service.NewImageNormalizer(root, pc, ""), nil)
	assets := service.NewAssetService(root, nil, pc, "", service.DefaultMaxHeroBytes, nil)

	opts := Options{CORSOrigins: []string{"http://localhost:3000"}}
	if tokens != nil {
		opts.Auth = tokens
	}
	return SetupRouter(Handlers{
		Recipes: api.NewRecipeHandler(recipes, assets, nil),
		Uploads: api.NewUploadHandler(assets, nil),
		Assets:  api.NewAssetHandler(root),
		Health:  api.NewHealthHandler(func(context.Context) error { return nil }, nil),
	}, opts)
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouterOpenWrites(t *testing.T) {
	r := setupRouter(t, nil)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/recipes", recipeJSON, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes/palacinke", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)

	w := serve(r, http.MethodGet, "/does/not/exist", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"Not found"}}`, w.Body.String())
}

func TestSetupRouterAdminAuth(t *testing.T) {
	tokens := service.NewTokenService("router-test-secret")
	r := setupRouter(t, tokens)

	token, err := tokens.GenerateAdminToken("editor", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/recipes", recipeJSON, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/uploads/recipe-hero", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/recipes", recipeJSON, "not-a-token").Code)

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/recipes", recipeJSON, token).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/recipes", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodDelete, "/recipes/palacinke", "", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/recipes/palacinke", "", token).Code)
}
