package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog"

	"estatescout/internal/ids"
	"estatescout/internal/media/sniffer"
)

// ObjectStore is the slice of the media host the services need.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, keys ...string) error
	KeyFromURL(raw string) (string, bool)
}

// File is one uploaded part. DeclaredType is the part's Content-Type, if any.
type File struct {
	Filename     string
	DeclaredType string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

type MediaService struct {
	store    ObjectStore
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewMediaService(store ObjectStore, maxBytes int64, log zerolog.Logger) *MediaService {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &MediaService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log,
	}
}

// Upload validates one image and stores it, returning its public URL.
func (s *MediaService) Upload(ctx context.Context, file File) (string, error) {
	if file.Open == nil {
		return "", fmt.Errorf("%w: invalid file payload", ErrInvalidInput)
	}
	if file.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidInput, file.Filename, s.maxBytes)
	}

	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrInvalidInput, file.Filename)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidInput, file.Filename, s.maxBytes)
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidInput, file.Filename, err)
	}
	if !sniffer.Generic(file.DeclaredType) && file.DeclaredType != result.MIME {
		return "", fmt.Errorf("%w: content type mismatch: declared %s, actual %s", ErrInvalidInput, file.DeclaredType, result.MIME)
	}

	key := s.objectKey(ids.New(), string(result.Type))
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return url, nil
}

// UploadAll stores files in order. On failure the objects already written are removed.
func (s *MediaService) UploadAll(ctx context.Context, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Upload(ctx, f)
		if err != nil {
			s.Discard(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Keys maps public URLs back to object keys, skipping foreign URLs.
func (s *MediaService) Keys(urls ...string) []string {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if key, ok := s.store.KeyFromURL(u); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// Discard removes the objects behind urls, logging rather than failing.
func (s *MediaService) Discard(ctx context.Context, urls ...string) {
	keys := s.Keys(urls...)
	if len(keys) == 0 {
		return
	}
	if err := s.store.Remove(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("discard uploads failed")
	}
}

// Remove deletes objects by key.
func (s *MediaService) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("remove objects: %w", err)
	}
	return nil
}

func (s *MediaService) objectKey(id, ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join("properties", datePrefix, id+"."+ext)
}
