package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStoresUnderDatedKey(t *testing.T) {
	objects := newFakeObjects()
	svc := NewMediaService(objects, 1<<10, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }

	url, err := svc.Upload(context.Background(), fileOf("a.png", "", pngBytes))
	require.NoError(t, err)

	key, ok := objects.KeyFromURL(url)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "properties/2024/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, pngBytes, objects.objects[key])
}

func TestUploadRejects(t *testing.T) {
	svc := NewMediaService(newFakeObjects(), 128, zerolog.Nop())
	ctx := context.Background()

	cases := map[string]File{
		"unsupported": fileOf("a.gif", "image/gif", []byte("GIF89a........")),
		"mismatch":    fileOf("a.png", "image/png", jpegBytes),
		"empty":       fileOf("a.jpg", "image/jpeg", nil),
		"too large":   fileOf("a.jpg", "image/jpeg", append(jpegBytes, bytes.Repeat([]byte{0}, 256)...)),
		"no body":     {Filename: "x"},
	}
	for name, file := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(ctx, file)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUploadAllDiscardsOnFailure(t *testing.T) {
	objects := newFakeObjects()
	svc := NewMediaService(objects, 1<<10, zerolog.Nop())

	_, err := svc.UploadAll(context.Background(), []File{
		fileOf("a.jpg", "image/jpeg", jpegBytes),
		fileOf("b.txt", "text/plain", []byte("hello")),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, objects.count())
	assert.Len(t, objects.removed, 1)
}

func TestUploadPropagatesStoreError(t *testing.T) {
	objects := newFakeObjects()
	objects.putErr = errors.New("host down")
	svc := NewMediaService(objects, 1<<10, zerolog.Nop())

	_, err := svc.Upload(context.Background(), fileOf("a.jpg", "image/jpeg", jpegBytes))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestKeysSkipsForeignURLs(t *testing.T) {
	svc := NewMediaService(newFakeObjects(), 0, zerolog.Nop())
	keys := svc.Keys(testBase+"/properties/a.jpg", "https://elsewhere.test/b.jpg")
	assert.Equal(t, []string{"properties/a.jpg"}, keys)
}
