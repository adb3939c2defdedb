package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/types"
)

// ClaimsKey is the gin context key holding the validated token claims
const ClaimsKey = "claims"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AdminAuth only lets requests through that carry a valid admin bearer token
func AdminAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, types.MsgMissingAuthorization)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, types.MsgInvalidAuthorization)
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			log.Debug("rejected bearer token", zap.Error(err), zap.String("path", c.FullPath()))
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, types.MsgInvalidAuthorization)
			return
		}
		if !claims.IsAdmin() {
			abortWithError(c, http.StatusForbidden, types.CodeForbidden, types.MsgAdminRequired)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code types.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, types.NewErrorResponse(code, message, nil))
}
