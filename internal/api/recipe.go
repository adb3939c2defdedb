package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/types"
)

// RecipeHandler serves the recipe CRUD endpoints
type RecipeHandler struct {
	recipes service.IRecipeService
	assets  service.IAssetService
	log     *zap.Logger
}

// NewRecipeHandler creates a RecipeHandler. assets is used for folder
// cleanup after delete and may be nil.
func NewRecipeHandler(recipes service.IRecipeService, assets service.IAssetService, log *zap.Logger) *RecipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeHandler{recipes: recipes, assets: assets, log: log}
}

// RegisterRoutes mounts the recipe routes. write runs before every mutating
// route.
func (h *RecipeHandler) RegisterRoutes(router gin.IRouter, write ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:slug", h.GetRecipe)
		recipes.POST("", chain(write, h.CreateRecipe)...)
		recipes.PUT("/:slug", chain(write, h.UpdateRecipe)...)
		recipes.DELETE("/:slug", chain(write, h.DeleteRecipe)...)
	}
}

// ListRecipes handles GET /recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter types.RecipeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetRecipe handles GET /recipes/:slug
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipeBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recipe})
}

// CreateRecipe handles POST /recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindRecipeJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	h.log.Info("recipe created", zap.String("slug", recipe.Slug))
	c.JSON(http.StatusCreated, gin.H{"data": recipe})
}

// UpdateRecipe handles PUT /recipes/:slug
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req types.UpdateRecipeRequest
	if !bindRecipeJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recipe})
}

// DeleteRecipe handles DELETE /recipes/:slug. The record is removed first;
// the asset folder cleanup that follows never affects the response.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	deleted, err := h.recipes.DeleteRecipe(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if h.assets != nil {
		h.assets.RemoveRecipeFolder(c.Request.Context(), deleted.Slug)
	}
	h.log.Info("recipe deleted", zap.String("slug", deleted.Slug))
	c.Status(http.StatusNoContent)
}
