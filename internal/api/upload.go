package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/slug"
	"github.com/pageza/recepti/backend/internal/types"
)

// multipart overhead allowed on top of the file limit
const formOverhead = 64 * 1024

// UploadHandler accepts hero image uploads
type UploadHandler struct {
	assets service.IAssetService
	log    *zap.Logger
}

// NewUploadHandler creates an UploadHandler
func NewUploadHandler(assets service.IAssetService, log *zap.Logger) *UploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadHandler{assets: assets, log: log}
}

// RegisterRoutes mounts the upload routes
func (h *UploadHandler) RegisterRoutes(router gin.IRouter, write ...gin.HandlerFunc) {
	uploads := router.Group("/uploads")
	{
		uploads.POST("/recipe-hero", chain(write, h.UploadRecipeHero)...)
	}
}

// UploadRecipeHero handles POST /uploads/recipe-hero with multipart fields
// slug and file.
func (h *UploadHandler) UploadRecipeHero(c *gin.Context) {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		respondError(c, http.StatusBadRequest, types.CodeBadRequest, types.MsgExpectedMultipart, nil)
		return
	}

	maxBytes := h.assets.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)
	if err := c.Request.ParseMultipartForm(maxBytes + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(c, h.log, &service.FileTooLargeError{Max: maxBytes})
			return
		}
		respondError(c, http.StatusBadRequest, types.CodeBadRequest, types.MsgExpectedMultipart, nil)
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	recipeSlug := strings.TrimSpace(c.Request.FormValue("slug"))
	if !slug.Valid(recipeSlug) {
		respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgInvalidSlug, nil)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgMissingFile, nil)
		return
	}
	if header.Size == 0 {
		respondServiceError(c, h.log, service.ErrEmptyFile)
		return
	}
	if header.Size > maxBytes {
		respondServiceError(c, h.log, &service.FileTooLargeError{Max: maxBytes})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	cdnPath, err := h.assets.SaveHero(c.Request.Context(), recipeSlug, data)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": types.HeroUpload{CdnPath: cdnPath}})
}
