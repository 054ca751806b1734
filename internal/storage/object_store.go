package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"estatescout/internal/config"
)

// ObjectStore is the media host for listing images.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
	base   string
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
		base:   PublicBase(cfg, endpoint, useSSL),
	}, nil
}

// PublicBase is the URL prefix under which objects of the bucket are served.
func PublicBase(cfg config.StorageConfig, endpoint string, useSSL bool) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, endpoint, cfg.Bucket)
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// Put uploads an object and returns its public URL.
func (s *ObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URLFor(key), nil
}

// Remove deletes the given keys; missing objects are not an error.
func (s *ObjectStore) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s: %w", key, err)
		}
	}
	return nil
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	return err
}

func (s *ObjectStore) URLFor(key string) string {
	return s.base + "/" + key
}

func (s *ObjectStore) KeyFromURL(raw string) (string, bool) {
	return KeyFromURL(s.base, raw)
}

// KeyFromURL recovers the object key from a URL produced under base.
func KeyFromURL(base, raw string) (string, bool) {
	prefix := base + "/"
	if !strings.HasPrefix(raw, prefix) || len(raw) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, prefix), true
}
