package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/recepti/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*types.TokenClaims, error) {
	return s.claims, s.err
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		validator stubValidator
		status    int
		code      types.ErrorCode
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized, types.CodeUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized, types.CodeUnauthorized},
		{"invalid token", "Bearer abc", stubValidator{err: errors.New("bad")}, http.StatusUnauthorized, types.CodeUnauthorized},
		{"not admin", "Bearer abc", stubValidator{claims: &types.TokenClaims{Role: "reader"}}, http.StatusForbidden, types.CodeForbidden},
		{"admin", "Bearer abc", stubValidator{claims: &types.TokenClaims{Role: types.RoleAdmin}}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/recipes", AdminAuth(tt.validator, zap.NewNop()), func(c *gin.Context) {
				_, ok := c.Get(ClaimsKey)
				assert.True(t, ok)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Code)
			}
		})
	}
}

func TestRecoveryRendersInternal(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, types.CodeInternal, apiErr.Code)
	assert.Equal(t, types.MsgUnexpectedError, apiErr.Message)
	assert.Equal(t, 1, logs.FilterMessage("panic while handling request").Len())
}

func TestNotFound(t *testing.T) {
	router := gin.New()
	router.NoRoute(NotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.CodeNotFound, decodeError(t, w).Code)
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.POST("/recipes", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/recipes", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
}
