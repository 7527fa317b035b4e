package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/inkpress/core/internal/config"
)

// BlobStore is the object-storage collaborator behind the media library.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// s3Store implements BlobStore on any S3-compatible endpoint.
type s3Store struct {
	client       *s3.Client
	bucket       string
	publicDomain string
}

// NewS3Store builds a BlobStore from the S3 section of the app config.
func NewS3Store(opts config.S3Options) (BlobStore, error) {
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	s3opts := s3.Options{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(
			awscreds.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		s3opts.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		// Non-AWS endpoints generally want path-style addressing.
		s3opts.UsePathStyle = true
	}

	return &s3Store{
		client:       s3.New(s3opts),
		bucket:       opts.Bucket,
		publicDomain: strings.TrimRight(opts.CustomDomain, "/"),
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) objectURL(key string) string {
	if s.publicDomain != "" {
		return s.publicDomain + "/" + key
	}
	endpoint := s.client.Options().BaseEndpoint
	if endpoint != nil {
		return *endpoint + "/" + s.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
