package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingInvalidator struct {
	n atomic.Int32
}

func (c *countingInvalidator) Clear(context.Context) {
	c.n.Add(1)
}

func TestWatcherClearsOnChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newTestRoot(t)
	target := &countingInvalidator{}
	w := NewWatcher(root, target, nil, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher a moment to register the root
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(root.Dir(), "recipes", "a"), 0o755))
	assert.Eventually(t, func() bool { return target.n.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := target.n.Load()
	// a file inside the directory created after start is still seen
	require.NoError(t, os.WriteFile(filepath.Join(root.Dir(), "recipes", "a", "hero.webp"), []byte("x"), 0o644))
	assert.Eventually(t, func() bool { return target.n.Load() > before }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
