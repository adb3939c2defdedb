package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/recepti/backend/internal/types"
)

// DefaultTokenTTL is how long an issued admin token stays valid
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotAdmin     = errors.New("token does not grant admin access")
)

// TokenService issues and validates HS256 admin tokens
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: "recepti",
		now:    time.Now,
	}
}

// GenerateAdminToken signs a token carrying role=admin for subject
func (s *TokenService) GenerateAdminToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: types.RoleAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and checks signature, expiry and issuer
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAdminToken is ValidateToken plus the admin role check
func (s *TokenService) ValidateAdminToken(tokenString string) (*types.TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
