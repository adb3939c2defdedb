package service_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/storage"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

var svgBytes = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`)

type recordingMirror struct {
	mu       sync.Mutex
	puts     []string
	deleted  []string
	failWith error
}

func (m *recordingMirror) Put(_ context.Context, key, _ string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts = append(m.puts, key)
	return m.failWith
}

func (m *recordingMirror) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, prefix)
	return m.failWith
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func setupAssetTest(t *testing.T) (*service.AssetService, *storage.Root, *recordingMirror, *countingInvalidator) {
	t.Helper()
	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)
	mirror := &recordingMirror{}
	inv := &countingInvalidator{}
	return service.NewAssetService(root, mirror, inv, "", 1024, nil), root, mirror, inv
}

func TestSaveHeroContentAddressed(t *testing.T) {
	svc, root, mirror, inv := setupAssetTest(t)

	sum := sha256.Sum256(pngBytes)
	want := "/recipes/rizi-bizi/hero." + hex.EncodeToString(sum[:])[:12] + ".png"

	got, err := svc.SaveHero(context.Background(), "rizi-bizi", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	stored, err := root.ReadFile(got)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pngBytes, stored))
	assert.Equal(t, []string{want[1:]}, mirror.puts)
	assert.Equal(t, 1, inv.calls)

	// same bytes, same name
	again, err := svc.SaveHero(context.Background(), "rizi-bizi", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSaveHeroSVG(t *testing.T) {
	svc, _, _, _ := setupAssetTest(t)
	got, err := svc.SaveHero(context.Background(), "muffini", svgBytes)
	require.NoError(t, err)
	assert.Regexp(t, `^/recipes/muffini/hero\.[0-9a-f]{12}\.svg$`, got)
}

func TestSaveHeroRejects(t *testing.T) {
	svc, _, _, _ := setupAssetTest(t)
	ctx := context.Background()

	_, err := svc.SaveHero(ctx, "Bad Slug", pngBytes)
	assert.ErrorIs(t, err, service.ErrInvalidSlug)

	_, err = svc.SaveHero(ctx, "../escape", pngBytes)
	assert.ErrorIs(t, err, service.ErrInvalidSlug)

	_, err = svc.SaveHero(ctx, "ok", nil)
	assert.ErrorIs(t, err, service.ErrEmptyFile)

	_, err = svc.SaveHero(ctx, "ok", []byte("just some text"))
	assert.ErrorIs(t, err, service.ErrUnsupportedImageType)

	_, err = svc.SaveHero(ctx, "ok", append(append([]byte{}, pngBytes...), make([]byte, 1024)...))
	var tooLarge *service.FileTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(1024), tooLarge.Max)
}

func TestSaveHeroMirrorFailureIsNotFatal(t *testing.T) {
	svc, _, mirror, _ := setupAssetTest(t)
	mirror.failWith = errors.New("bucket unavailable")

	_, err := svc.SaveHero(context.Background(), "rizi-bizi", pngBytes)
	assert.NoError(t, err)
}

func TestRemoveRecipeFolder(t *testing.T) {
	svc, root, mirror, inv := setupAssetTest(t)
	ctx := context.Background()

	require.NoError(t, root.WriteFile("recipes/rizi-bizi/hero.png", pngBytes))
	require.NoError(t, root.WriteFile("recipes/other/hero.png", pngBytes))

	svc.RemoveRecipeFolder(ctx, "rizi-bizi")
	assert.False(t, root.Exists("recipes/rizi-bizi/hero.png"))
	assert.True(t, root.Exists("recipes/other/hero.png"))
	assert.Equal(t, []string{"recipes/rizi-bizi/"}, mirror.deleted)
	assert.Equal(t, 1, inv.calls)

	// invalid slugs never touch the filesystem
	svc.RemoveRecipeFolder(ctx, "..")
	svc.RemoveRecipeFolder(ctx, "")
	assert.True(t, root.Exists("recipes/other/hero.png"))
	assert.Len(t, mirror.deleted, 1)

	// missing folder and failing mirror are swallowed
	mirror.failWith = errors.New("boom")
	svc.RemoveRecipeFolder(ctx, "never-existed")
}
