// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pdiddy/optoscholar/pkg/types"
)

// S3API is the subset of the S3 client the slot uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Slot stores the library as one object in an S3-compatible bucket.
type S3Slot struct {
	client S3API
	bucket string
	key    string
}

// NewS3Slot returns a slot for bucket/key.
func NewS3Slot(client S3API, bucket, key string) *S3Slot {
	return &S3Slot{client: client, bucket: bucket, key: key}
}

// NewS3Client builds an S3 client from cfg. A custom endpoint (MinIO, Strato,
// R2) switches to path-style addressing; static keys override the default
// credential chain.
func NewS3Client(ctx context.Context, cfg types.LibraryConfig) (*s3.Client, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 backend requires a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Read fetches the object, or returns ErrSlotEmpty if it does not exist.
func (s *S3Slot) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}

// Write replaces the object.
func (s *S3Slot) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
