package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the part of *s3.Client the mirror needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Options configures the S3 mirror.
type S3Options struct {
	Bucket       string
	Region       string
	Endpoint     string // S3-compatible endpoint, empty for AWS
	UsePathStyle bool

	// static keys, used instead of the default credential chain when set
	AccessKeyID     string
	SecretAccessKey string
}

// S3Mirror copies uploads into an S3 bucket using the asset path as key.
type S3Mirror struct {
	client s3API
	bucket string
}

// NewS3Mirror uses the static keys from opts when given and otherwise loads
// AWS credentials from the environment or shared config.
func NewS3Mirror(ctx context.Context, opts S3Options) (*S3Mirror, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(opts.Endpoint, "/"))
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return newS3Mirror(client, opts.Bucket), nil
}

func newS3Mirror(client s3API, bucket string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket}
}

func objectKey(p string) string {
	return strings.TrimLeft(p, "/")
}

// Put stores data under key.
func (m *S3Mirror) Put(ctx context.Context, key, contentType string, data []byte) error {
	key = objectKey(key)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", m.bucket, key, err)
	}
	return nil
}

// DeletePrefix removes every object whose key starts with prefix.
func (m *S3Mirror) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = objectKey(prefix)
	if prefix == "" {
		return fmt.Errorf("s3 delete: refusing to delete the whole bucket")
	}

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("s3 list %s/%s: %w", m.bucket, prefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		out, err := m.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(m.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("s3 delete %s/%s: %w", m.bucket, prefix, err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("s3 delete %s/%s: %d objects failed, first %s: %s",
				m.bucket, prefix, len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}
