package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/types"
)

// Recovery turns a panic into a 500 INTERNAL envelope and logs it
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		log.Error("panic while handling request",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			types.NewErrorResponse(types.CodeInternal, types.MsgUnexpectedError, nil))
	})
}

// NotFound renders unknown routes as a NOT_FOUND envelope
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.NewErrorResponse(types.CodeNotFound, types.MsgNotFound, nil))
}
