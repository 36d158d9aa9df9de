// Package s3 stores capture images in an S3-compatible bucket
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"go.uber.org/zap"
)

// Config holds bucket location and credentials. Endpoint is only needed for
// S3-compatible stores such as MinIO or R2.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	ForcePathStyle  bool
}

// ObjectStore implements outbound.ObjectStore
type ObjectStore struct {
	api     s3iface.S3API
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewObjectStore creates an AWS session from cfg
func NewObjectStore(cfg Config, logger *zap.Logger) (*ObjectStore, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewObjectStoreWithAPI(s3.New(sess), cfg, logger), nil
}

// NewObjectStoreWithAPI wraps an existing client
func NewObjectStoreWithAPI(api s3iface.S3API, cfg Config, logger *zap.Logger) *ObjectStore {
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &ObjectStore{
		api:     api,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		logger:  logger.Named("s3-store"),
	}
}

// Put uploads body under key and returns its public URL
func (s *ObjectStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug("Object stored", zap.String("key", key))
	return s.baseURL + "/" + key, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Ping checks that the bucket is reachable; the readiness check uses it
func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.api.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

var _ outbound.ObjectStore = (*ObjectStore)(nil)
