package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"mdrive/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store stores blobs in an S3-compatible bucket. BaseEndpoint directs
// requests at the configured provider instead of AWS.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Store(cfg config.S3Config) *S3Store {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.ForcePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &S3Store{
		client:        s3.New(opts),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *S3Store) Upload(ctx context.Context, content io.Reader, size int64, mimeType string) (PutResult, error) {
	resourceType := resourceTypeFor(mimeType)
	key := fmt.Sprintf("%s/%s/%s", resourceType, time.Now().Format("2006/01"), uuid.New().String())

	// The SDK needs a seekable body to compute the SigV4 payload hash, so
	// buffer when the caller hands us a plain stream.
	var body io.ReadSeeker
	if rs, ok := content.(io.ReadSeeker); ok {
		body = rs
	} else {
		data, err := io.ReadAll(content)
		if err != nil {
			return PutResult{}, fmt.Errorf("read content: %w", err)
		}
		body = bytes.NewReader(data)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return PutResult{}, fmt.Errorf("put object: %w", err)
	}

	return PutResult{
		URL:          fmt.Sprintf("%s/%s", s.publicBaseURL, key),
		Key:          key,
		ResourceType: resourceType,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string, _ string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
