package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/types"
)

// FieldError describes one rejected field of a payload
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, code types.ErrorCode, message string, details interface{}) {
	c.AbortWithStatusJSON(status, types.NewErrorResponse(code, message, details))
}

// respondServiceError maps service errors onto the error envelope. Anything
// unrecognised is logged and reported as INTERNAL.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var tooLarge *service.FileTooLargeError
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		respondError(c, http.StatusNotFound, types.CodeNotFound, types.MsgRecipeNotFound, nil)
	case errors.Is(err, service.ErrSlugGenerationFailed):
		respondError(c, http.StatusBadRequest, types.CodeBadRequest, types.MsgSlugNotGenerated, nil)
	case errors.Is(err, service.ErrSlugConflict):
		respondError(c, http.StatusConflict, types.CodeConflict, types.MsgSlugMustBeUnique, nil)
	case errors.Is(err, service.ErrInvalidSlug):
		respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgInvalidSlug, nil)
	case errors.Is(err, service.ErrEmptyFile):
		respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgEmptyFile, nil)
	case errors.Is(err, service.ErrUnsupportedImageType):
		respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgUnsupportedImageType, nil)
	case errors.As(err, &tooLarge):
		respondError(c, http.StatusBadRequest, types.CodeBadRequest, tooLarge.Error(), nil)
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, types.CodeInternal, types.MsgUnexpectedError, nil)
	}
}

// respondBindError reports a payload that failed decoding or validation
func respondBindError(c *gin.Context, err error) {
	respondInvalidPayload(c, bindErrorDetails(err))
}

func respondInvalidPayload(c *gin.Context, details []FieldError) {
	respondError(c, http.StatusBadRequest, types.CodeValidation, types.MsgInvalidPayload, details)
}

func bindErrorDetails(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fieldPath(fe),
				Rule:    fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{Field: typeErr.Field, Rule: "type", Message: "must be of type " + typeErr.Type.String()}}
	}
	return []FieldError{{Field: "", Rule: "json", Message: err.Error()}}
}

// fieldPath drops the struct name from the namespace, leaving e.g.
// "ingredients[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isCollection(fe) {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		if isText(fe) {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

func isCollection(fe validator.FieldError) bool {
	k := fe.Kind().String()
	return k == "slice" || k == "map" || k == "array"
}

func isText(fe validator.FieldError) bool {
	return fe.Kind().String() == "string"
}
