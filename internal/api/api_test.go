package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recepti/backend/internal/api"
	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/middleware"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/storage"
	"github.com/pageza/recepti/backend/internal/testhelpers"
	"github.com/pageza/recepti/backend/internal/types"
)

const testMaxUpload = 1024

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	root   *storage.Root
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)
	pc := cache.NewMemoryCache(64, time.Minute)

	recipes := service.NewRecipeService(db, service.NewImageNormalizer(root, pc, ""), nil)
	assets := service.NewAssetService(root, nil, pc, "", testMaxUpload, nil)

	router := gin.New()
	router.Use(middleware.Recovery(zap.NewNop()))
	router.NoRoute(middleware.NotFound)
	api.NewRecipeHandler(recipes, assets, nil).RegisterRoutes(router)
	api.NewUploadHandler(assets, nil).RegisterRoutes(router)
	api.NewAssetHandler(root).RegisterRoutes(router)

	return &testEnv{router: router, db: db, root: root}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, into))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func validRecipe(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":           title,
		"lead":            "Brzi ručak za cijelu obitelj.",
		"prepTimeMinutes": 25,
		"servings":        4,
		"difficulty":      "EASY",
		"dishGroup":       "MAIN",
		"cookingMethod":   "BOIL",
		"tags":            []string{"brzo", "ručak"},
		"ingredients": []map[string]interface{}{
			{"name": "riža", "amount": 200, "unit": "g"},
			{"name": "grašak", "amount": "šalica"},
		},
		"steps":        []map[string]interface{}{{"text": "Skuhaj rižu."}, {"text": "Dodaj grašak."}},
		"imageCdnPath": "/recipes/rizi-bizi/hero.webp",
	}
}
