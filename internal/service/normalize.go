package service

import (
	"context"
	"path"
	"strings"

	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/model"
	"github.com/pageza/recepti/backend/internal/storage"
)

// probeExtensions lists the sibling formats tried, in order of preference,
// when a stored image path no longer exists on disk.
var probeExtensions = []string{".webp", ".jpg", ".jpeg", ".png", ".svg"}

// ImageNormalizer maps stored image paths to files that actually exist under
// the asset root. Results, including misses, are cached per requested path.
type ImageNormalizer struct {
	root   *storage.Root
	cache  cache.PathCache
	prefix string
}

// NewImageNormalizer creates a normalizer. prefix is the public URL prefix
// of the asset root ("" or e.g. "/cdn"); it is ignored for disk lookups and
// kept in returned paths.
func NewImageNormalizer(root *storage.Root, pc cache.PathCache, prefix string) *ImageNormalizer {
	return &ImageNormalizer{root: root, cache: pc, prefix: strings.TrimRight(prefix, "/")}
}

// Normalize returns cdnPath when the file exists, otherwise the first
// existing sibling with another image extension, otherwise cdnPath.
func (n *ImageNormalizer) Normalize(ctx context.Context, cdnPath string) string {
	if cdnPath == "" || strings.Contains(cdnPath, "://") {
		return cdnPath
	}
	if cached, ok := n.cache.Get(ctx, cdnPath); ok {
		return cached
	}
	resolved := n.resolve(cdnPath)
	n.cache.Set(ctx, cdnPath, resolved)
	return resolved
}

func (n *ImageNormalizer) resolve(cdnPath string) string {
	if n.root.Exists(n.diskPath(cdnPath)) {
		return cdnPath
	}

	ext := path.Ext(cdnPath)
	stem := strings.TrimSuffix(cdnPath, ext)
	for _, candidate := range probeExtensions {
		if strings.EqualFold(candidate, ext) {
			continue
		}
		if n.root.Exists(n.diskPath(stem + candidate)) {
			return stem + candidate
		}
	}
	return cdnPath
}

func (n *ImageNormalizer) diskPath(cdnPath string) string {
	if n.prefix == "" {
		return cdnPath
	}
	if cdnPath == n.prefix {
		return ""
	}
	if strings.HasPrefix(cdnPath, n.prefix+"/") {
		return cdnPath[len(n.prefix):]
	}
	return cdnPath
}

// NormalizeImages normalizes the hero of images, falling back to
// imageCdnPath when no hero path is stored. It returns the merged images and
// the normalized hero path, which callers report as imageCdnPath.
func (n *ImageNormalizer) NormalizeImages(ctx context.Context, images model.Images, imageCdnPath string) (model.Images, string) {
	raw := images.HeroPath()
	if raw == "" {
		raw = imageCdnPath
	}
	hero := n.Normalize(ctx, raw)
	return images.WithHeroPath(hero), hero
}
