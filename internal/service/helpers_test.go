package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"estatescout/internal/models"
	"estatescout/internal/queue"
	"estatescout/internal/repository/memory"
	"estatescout/internal/security"
)

const testBase = "https://media.test/estatescout"

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return testBase + "/" + key, nil
}

func (f *fakeObjects) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.objects, k)
		f.removed = append(f.removed, k)
	}
	return nil
}

func (f *fakeObjects) KeyFromURL(raw string) (string, bool) {
	prefix := testBase + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, prefix), true
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type recordedTasks struct {
	mu    sync.Mutex
	tasks []queue.Task
}

func (r *recordedTasks) Enqueue(_ context.Context, task queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

type memoryCache struct {
	value       any
	sets        int
	invalidated int
}

func (m *memoryCache) Get(_ context.Context, out any) (bool, error) {
	if m.value == nil {
		return false, nil
	}
	ptr := out.(*[]models.PropertyWithOwner)
	*ptr = m.value.([]models.PropertyWithOwner)
	return true, nil
}

func (m *memoryCache) Set(_ context.Context, value any) error {
	m.value = value
	m.sets++
	return nil
}

func (m *memoryCache) Invalidate(context.Context) error {
	m.value = nil
	m.invalidated++
	return nil
}

var (
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x01}, 64)...)
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0x02}, 64)...)
)

func fileOf(name, declared string, data []byte) File {
	return File{
		Filename:     name,
		DeclaredType: declared,
		Size:         int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type fixture struct {
	users      *memory.UserStore
	properties *memory.PropertyStore
	objects    *fakeObjects
	tasks      *recordedTasks
	cache      *memoryCache
	tokens     *security.TokenService
	auth       *AuthService
	media      *MediaService
	listings   *PropertyService
	accounts   *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := security.NewTokenService("access-secret-0123456789", "refresh-secret-0123456789")
	require.NoError(t, err)

	log := zerolog.Nop()
	f := &fixture{
		users:      memory.NewUserStore(),
		properties: memory.NewPropertyStore(),
		objects:    newFakeObjects(),
		tasks:      &recordedTasks{},
		cache:      &memoryCache{},
		tokens:     tokens,
	}
	f.auth = NewAuthService(f.users, tokens, security.MinHashCost, log)
	f.media = NewMediaService(f.objects, 1<<10, log)
	f.listings = NewPropertyService(f.properties, f.users, f.media, f.cache, f.tasks, log)
	f.accounts = NewUserService(f.users, f.properties, f.tasks, log)
	return f
}

func (f *fixture) register(t *testing.T, email string) security.Identity {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "pw123456",
		Name:     "Agent " + email,
	})
	require.NoError(t, err)
	return security.Identity{UserID: res.User.ID, Role: res.User.Role}
}

func (f *fixture) createListing(t *testing.T, owner security.Identity, title string) string {
	t.Helper()
	p, err := f.listings.Create(context.Background(), owner, CreatePropertyInput{
		Title:     title,
		Price:     100,
		Images:    []File{fileOf("a.jpg", "image/jpeg", jpegBytes)},
		Thumbnail: ptr(fileOf("t.png", "image/png", pngBytes)),
	})
	require.NoError(t, err)
	return p.ID
}

func ptr[T any](v T) *T { return &v }
