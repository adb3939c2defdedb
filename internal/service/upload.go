package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/internal/slug"
	"github.com/pageza/recepti/backend/internal/storage"
)

// DefaultMaxHeroBytes is the hero upload limit when none is configured
const DefaultMaxHeroBytes int64 = 5 * 1024 * 1024

const hashPrefixLen = 12

// heroExtensions maps the accepted image types to stored extensions
var heroExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// AssetService writes and removes recipe images under the asset root
type AssetService struct {
	root     *storage.Root
	mirror   storage.Mirror
	cache    storage.Invalidator
	prefix   string
	maxBytes int64
	log      *zap.Logger
}

// NewAssetService creates an AssetService. mirror and cache may be nil.
func NewAssetService(root *storage.Root, mirror storage.Mirror, cache storage.Invalidator, prefix string, maxBytes int64, log *zap.Logger) *AssetService {
	if mirror == nil {
		mirror = storage.NoopMirror{}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHeroBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetService{
		root:     root,
		mirror:   mirror,
		cache:    cache,
		prefix:   prefix,
		maxBytes: maxBytes,
		log:      log,
	}
}

// MaxBytes returns the upload size limit
func (s *AssetService) MaxBytes() int64 {
	return s.maxBytes
}

// SaveHero validates data and stores it content-addressed as
// recipes/<slug>/hero.<sha256[:12]><ext>. It returns the public cdnPath.
func (s *AssetService) SaveHero(ctx context.Context, recipeSlug string, data []byte) (string, error) {
	if !slug.Valid(recipeSlug) {
		return "", ErrInvalidSlug
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", &FileTooLargeError{Max: s.maxBytes}
	}

	mtype := mimetype.Detect(data)
	ext, ok := heroExtension(mtype)
	if !ok {
		return "", ErrUnsupportedImageType
	}

	sum := sha256.Sum256(data)
	name := "hero." + hex.EncodeToString(sum[:])[:hashPrefixLen] + ext
	rel := path.Join("recipes", recipeSlug, name)

	if err := s.root.WriteFile(rel, data); err != nil {
		return "", fmt.Errorf("store hero image: %w", err)
	}
	if err := s.mirror.Put(ctx, rel, mtype.String(), data); err != nil {
		s.log.Warn("mirror upload failed", zap.String("key", rel), zap.Error(err))
	}
	s.invalidate(ctx)

	s.log.Info("hero image stored", zap.String("slug", recipeSlug), zap.String("path", rel), zap.Int("bytes", len(data)))
	return s.prefix + "/" + rel, nil
}

func heroExtension(mtype *mimetype.MIME) (string, bool) {
	for m := mtype; m != nil; m = m.Parent() {
		if ext, ok := heroExtensions[m.String()]; ok {
			return ext, true
		}
	}
	return "", false
}

// RemoveRecipeFolder deletes recipes/<slug>/ locally and in the mirror.
// Failures are logged and never returned; the folder is only touched for a
// well-formed slug.
func (s *AssetService) RemoveRecipeFolder(ctx context.Context, recipeSlug string) {
	if !slug.Valid(recipeSlug) {
		return
	}
	rel := path.Join("recipes", recipeSlug)

	if err := s.root.RemoveAll(rel); err != nil {
		s.log.Warn("asset folder cleanup failed", zap.String("slug", recipeSlug), zap.Error(err))
	}
	if err := s.mirror.DeletePrefix(ctx, rel+"/"); err != nil {
		s.log.Warn("mirror cleanup failed", zap.String("slug", recipeSlug), zap.Error(err))
	}
	s.invalidate(ctx)
}

func (s *AssetService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Clear(ctx)
	}
}
