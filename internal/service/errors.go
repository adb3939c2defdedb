package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrSlugGenerationFailed = errors.New("slug could not be generated")
	ErrSlugConflict         = errors.New("recipe slug must be unique")

	ErrInvalidSlug          = errors.New("invalid slug")
	ErrEmptyFile            = errors.New("empty file")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// FileTooLargeError reports an upload over the size limit
type FileTooLargeError struct {
	Max int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("Max file size is %d bytes", e.Max)
}

// isUniqueViolation recognises a unique constraint failure from either
// driver, with or without gorm's error translation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
