package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestS3MirrorPutAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	m := newS3Mirror(fake, "recepti-assets")

	require.NoError(t, m.Put(ctx, "/recipes/a/hero.0123456789ab.png", "image/png", []byte("a")))
	require.NoError(t, m.Put(ctx, "recipes/a/gallery.png", "image/png", []byte("b")))
	require.NoError(t, m.Put(ctx, "recipes/ab/hero.png", "image/png", []byte("c")))

	assert.Equal(t, "image/png", fake.types["recipes/a/hero.0123456789ab.png"])

	require.NoError(t, m.DeletePrefix(ctx, "/recipes/a/"))
	assert.NotContains(t, fake.objects, "recipes/a/hero.0123456789ab.png")
	assert.NotContains(t, fake.objects, "recipes/a/gallery.png")
	assert.Contains(t, fake.objects, "recipes/ab/hero.png")

	assert.Error(t, m.DeletePrefix(ctx, "/"))
}

func TestNoopMirror(t *testing.T) {
	var m Mirror = NoopMirror{}
	assert.NoError(t, m.Put(context.Background(), "k", "image/png", nil))
	assert.NoError(t, m.DeletePrefix(context.Background(), "recipes/a/"))
}

func TestNewS3MirrorWithStaticKeys(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	m, err := NewS3Mirror(context.Background(), S3Options{
		Bucket:          "recepti-assets",
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000/",
		UsePathStyle:    true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "recepti-assets", m.bucket)
	_, ok := m.client.(*s3.Client)
	assert.True(t, ok)
}
