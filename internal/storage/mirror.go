package storage

import "context"

// Mirror replicates asset writes to a remote object store.
type Mirror interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// NoopMirror is used when no object store is configured.
type NoopMirror struct{}

func (NoopMirror) Put(context.Context, string, string, []byte) error { return nil }

func (NoopMirror) DeletePrefix(context.Context, string) error { return nil }
