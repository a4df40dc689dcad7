// Package objectstore stores answer sheet images in an S3-compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Config describes the MinIO connection.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the base used when building object URLs, e.g. a CDN.
	PublicURL string
}

// Store writes objects to a MinIO bucket.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  zerolog.Logger
}

// New constructs a store. It does not touch the network; call EnsureBucket at startup.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio endpoint and credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}

	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL(cfg, client.EndpointURL()),
		logger:  logger.With().Str("component", "objectstore").Logger(),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Str("bucket", s.bucket).Msg("bucket created")
	return nil
}

// Upload puts the object and returns its URL.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	key := objectKey(name)
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	s.logger.Info().Str("key", info.Key).Int64("size", info.Size).Msg("answer sheet stored")
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL for a key in the configured bucket.
func (s *Store) ObjectURL(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + objectKey(key)
}

func baseURL(cfg Config, endpoint *url.URL) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	if endpoint != nil {
		return strings.TrimRight(endpoint.String(), "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}

func objectKey(name string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(cleaned, "/")
}
