package api_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recepti/backend/internal/types"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

// multipartBody builds a form with the given slug and, when file is not nil,
// a file part.
func multipartBody(t *testing.T, slug *string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if slug != nil {
		require.NoError(t, mw.WriteField("slug", *slug))
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", "hero.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, slug *string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, slug, file)
	req := httptest.NewRequest(http.MethodPost, "/uploads/recipe-hero", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

func TestUploadRecipeHero(t *testing.T) {
	env := setupTestRouter(t)

	w := env.upload(t, strPtr("rizi-bizi"), pngBytes)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out types.HeroUpload
	decodeData(t, w, &out)
	assert.Regexp(t, `^/recipes/rizi-bizi/hero\.[0-9a-f]{12}\.png$`, out.CdnPath)
	assert.True(t, env.root.Exists(out.CdnPath))

	// the stored file is served as an immutable asset
	w = env.do(t, http.MethodGet, "/assets"+out.CdnPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestUploadRecipeHeroRejections(t *testing.T) {
	tests := []struct {
		name    string
		slug    *string
		file    []byte
		code    types.ErrorCode
		message string
	}{
		{"missing slug", nil, pngBytes, types.CodeValidation, types.MsgInvalidSlug},
		{"blank slug", strPtr("   "), pngBytes, types.CodeValidation, types.MsgInvalidSlug},
		{"malformed slug", strPtr("Riži Bizi"), pngBytes, types.CodeValidation, types.MsgInvalidSlug},
		{"traversal slug", strPtr("../etc"), pngBytes, types.CodeValidation, types.MsgInvalidSlug},
		{"malformed slug without file", strPtr("Bad Slug"), nil, types.CodeValidation, types.MsgInvalidSlug},
		{"malformed slug with empty file", strPtr("bad--slug"), []byte{}, types.CodeValidation, types.MsgInvalidSlug},
		{"missing file", strPtr("rizi-bizi"), nil, types.CodeValidation, types.MsgMissingFile},
		{"empty file", strPtr("rizi-bizi"), []byte{}, types.CodeValidation, types.MsgEmptyFile},
		{"text file", strPtr("rizi-bizi"), []byte("just some words"), types.CodeValidation, types.MsgUnsupportedImageType},
		{"too large", strPtr("rizi-bizi"), append(append([]byte{}, pngBytes...), make([]byte, testMaxUpload)...), types.CodeBadRequest, "Max file size is 1024 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			w := env.upload(t, tt.slug, tt.file)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			apiErr := decodeError(t, w)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.False(t, env.root.Exists("recipes/rizi-bizi"))
		})
	}
}

func TestUploadRecipeHeroRequiresMultipart(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/uploads/recipe-hero", strings.NewReader(`{"slug":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, types.CodeBadRequest, apiErr.Code)
	assert.Equal(t, types.MsgExpectedMultipart, apiErr.Message)
}
