package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store backs Store with an S3 bucket: the object key is the digest's
// hex string and the object body is the raw lowered bytecode buffer.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store loads the default AWS config (environment, shared config
// file, or EC2/ECS role credentials, in that order) and constructs a
// client for bucket. prefix is prepended to every object key, letting
// several recompiler deployments share one bucket.
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: loading AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) key(digest Digest) string {
	if s.prefix == "" {
		return digest.String()
	}
	return s.prefix + "/" + digest.String()
}

// Get fetches the cached artifact for digest, returning ok=false on a
// missing-key error rather than surfacing S3's NoSuchKey as a failure.
func (s *S3Store) Get(ctx context.Context, digest Digest) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(digest)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: getting %s: %w", digest, err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %s: %w", digest, err)
	}
	return body, true, nil
}

// Put uploads program under digest's key, overwriting any prior object.
func (s *S3Store) Put(ctx context.Context, digest Digest, program []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(digest)),
		Body:   bytes.NewReader(program),
	})
	if err != nil {
		return fmt.Errorf("cache: putting %s: %w", digest, err)
	}
	return nil
}
