package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/recepti/backend/internal/api"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		ping   api.Pinger
		status int
		body   string
	}{
		{"database up", func(context.Context) error { return nil }, http.StatusOK, `{"status":"ok"}`},
		{"database down", func(context.Context) error { return errors.New("connection refused") }, http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			router := gin.New()
			api.NewHealthHandler(tt.ping, zap.New(core)).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Zero(t, logs.Len())
			} else {
				assert.Equal(t, 1, logs.FilterMessage("health check failed").Len())
			}
		})
	}
}
