package api

import (
	"fmt"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/pageza/recepti/backend/internal/storage"
)

const (
	immutableCacheControl = "public, max-age=31536000, immutable"
	defaultCacheControl   = "public, max-age=86400"
)

// fingerprintPattern matches content-addressed names such as
// hero.2b1c4d7a.webp or hero-2b1c4d7a9e10.webp.
var fingerprintPattern = regexp.MustCompile(`(?i)[.-][a-f0-9]{8,}\.`)

// AssetHandler serves files below the asset root with cache validators
type AssetHandler struct {
	root *storage.Root
}

// NewAssetHandler creates an AssetHandler
func NewAssetHandler(root *storage.Root) *AssetHandler {
	return &AssetHandler{root: root}
}

// RegisterRoutes mounts GET and HEAD /assets/*path
func (h *AssetHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/assets/*path", h.ServeAsset)
	router.HEAD("/assets/*path", h.ServeAsset)
}

// ServeAsset answers with the file, a 304, or a plain 404 for anything that
// is missing, unreadable or outside the root.
func (h *AssetHandler) ServeAsset(c *gin.Context) {
	rel := c.Param("path")

	info, err := h.root.Stat(rel)
	if err != nil || !info.Mode().IsRegular() {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	mtime := info.ModTime()
	etag := weakETag(info.Size(), mtime)
	cacheControl := CacheControlFor(path.Base(rel))

	header := c.Writer.Header()
	header.Set("ETag", etag)
	header.Set("Last-Modified", mtime.UTC().Format(http.TimeFormat))
	header.Set("Cache-Control", cacheControl)

	if notModified(c.Request, etag, mtime) {
		c.Status(http.StatusNotModified)
		return
	}

	data, err := h.root.ReadFile(rel)
	if err != nil {
		header.Del("ETag")
		header.Del("Last-Modified")
		header.Del("Cache-Control")
		c.String(http.StatusNotFound, "Not found")
		return
	}

	contentType := contentTypeFor(rel, data)
	header.Set("Content-Length", strconv.Itoa(len(data)))
	if c.Request.Method == http.MethodHead {
		header.Set("Content-Type", contentType)
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// CacheControlFor classifies a file name as immutable or short-lived
func CacheControlFor(name string) string {
	if fingerprintPattern.MatchString(name) {
		return immutableCacheControl
	}
	return defaultCacheControl
}

func weakETag(size int64, mtime time.Time) string {
	return fmt.Sprintf(`W/"%d-%d"`, size, mtime.UnixMilli())
}

// notModified reports a matching If-None-Match or an If-Modified-Since at or
// after mtime. Header values that do not parse are ignored.
func notModified(r *http.Request, etag string, mtime time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		return true
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		since, err := http.ParseTime(ims)
		if err != nil {
			return false
		}
		// HTTP dates carry whole seconds
		return !mtime.Truncate(time.Second).After(since)
	}
	return false
}

func contentTypeFor(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil && mt.String() != "application/octet-stream" {
			return mt.String()
		}
	}
	return "application/octet-stream"
}
