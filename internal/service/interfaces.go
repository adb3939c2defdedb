package service

import (
	"context"

	"github.com/pageza/recepti/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]types.RecipeListItem, error)
	GetRecipeBySlug(ctx context.Context, slug string) (*types.Recipe, error)
	CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*types.Recipe, error)
	UpdateRecipe(ctx context.Context, slug string, req *types.UpdateRecipeRequest) (*types.Recipe, error)
	DeleteRecipe(ctx context.Context, slug string) (*types.Recipe, error)
}

// IAssetService defines the interface for recipe image storage
type IAssetService interface {
	SaveHero(ctx context.Context, slug string, data []byte) (string, error)
	RemoveRecipeFolder(ctx context.Context, slug string)
	MaxBytes() int64
}

// ITokenService validates admin bearer tokens
type ITokenService interface {
	ValidateAdminToken(token string) (*types.TokenClaims, error)
}

var (
	_ IRecipeService = (*RecipeService)(nil)
	_ IAssetService  = (*AssetService)(nil)
	_ ITokenService  = (*TokenService)(nil)
)
