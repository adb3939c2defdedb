package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role allowed to change the catalog
const RoleAdmin = "admin"

// TokenClaims represents the claims in an admin JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IsAdmin reports whether the token grants write access
func (c *TokenClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
