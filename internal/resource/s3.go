package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	gopath "path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds S3 connection settings.
type S3Config struct {
	Endpoint     string // optional custom endpoint (MinIO etc.)
	Bucket       string
	KeyPrefix    string // optional key prefix inside the bucket
	AccessKey    string
	SecretKey    string
	Region       string
	UsePathStyle bool
}

// S3Resolver resolves request paths against objects in an S3 bucket.
type S3Resolver struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewS3Resolver creates a resolver backed by an S3-compatible store.
func NewS3Resolver(ctx context.Context, cfg S3Config) (*S3Resolver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Path style is required for MinIO
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Resolver{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
	}, nil
}

func (s *S3Resolver) key(path string) string {
	return gopath.Join(s.keyPrefix, gopath.Clean(strings.TrimPrefix(path, "/")))
}

// Resolve heads the object to obtain its metadata; the byte stream is
// fetched lazily on Open so a 304 never issues a GetObject.
func (s *S3Resolver) Resolve(ctx context.Context, path string) (*Location, error) {
	key := s.key(path)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("head object %s: %w", key, err)
	}

	return NewLocation(path, gopath.Base(key), aws.ToTime(head.LastModified), aws.ToInt64(head.ContentLength), func() (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("get object %s: %w", key, err)
		}
		return out.Body, nil
	}), nil
}
