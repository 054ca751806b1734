// Package memory holds process-local stores for development and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"estatescout/internal/models"
	"estatescout/internal/repository"
)

type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

var _ repository.UserStore = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u models.User) models.User {
	u.Posts = slices.Clone(u.Posts)
	u.PasswordHash = slices.Clone(u.PasswordHash)
	return u
}

func (s *UserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	if user.Posts == nil {
		user.Posts = []string{}
	}
	s.byID[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return cloneUser(s.byID[id]), nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *UserStore) GetMany(_ context.Context, ids []string) (map[string]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.byID[id]; ok {
			out[id] = cloneUser(user)
		}
	}
	return out, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	user.Apply(update)
	user.UpdatedAt = time.Now().UTC()
	s.byID[id] = user
	return cloneUser(user), nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, user.Email)
	return nil
}

func (s *UserStore) AddPost(_ context.Context, userID, propertyID string) error {
	return s.mutate(userID, func(u *models.User) {
		if !slices.Contains(u.Posts, propertyID) {
			u.Posts = append(u.Posts, propertyID)
		}
	})
}

func (s *UserStore) RemovePost(_ context.Context, userID, propertyID string) error {
	return s.mutate(userID, func(u *models.User) {
		u.Posts = slices.DeleteFunc(u.Posts, func(p string) bool { return p == propertyID })
	})
}

func (s *UserStore) mutate(id string, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	s.byID[id] = user
	return nil
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

type PropertyStore struct {
	mu    sync.RWMutex
	items map[string]models.Property
	seq   int64
	order map[string]int64
}

var _ repository.PropertyStore = (*PropertyStore)(nil)

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{
		items: make(map[string]models.Property),
		order: make(map[string]int64),
	}
}

func cloneProperty(p models.Property) models.Property {
	p.Amenities = slices.Clone(p.Amenities)
	p.Images = slices.Clone(p.Images)
	return p
}

func (s *PropertyStore) Create(_ context.Context, p models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	s.seq++
	s.items[p.ID] = cloneProperty(p)
	s.order[p.ID] = s.seq
	return nil
}

func (s *PropertyStore) List(_ context.Context) ([]models.Property, error) {
	return s.filter(func(models.Property) bool { return true }), nil
}

func (s *PropertyStore) ListByOwner(_ context.Context, ownerID string) ([]models.Property, error) {
	return s.filter(func(p models.Property) bool { return p.OwnerID == ownerID }), nil
}

// filter returns matches newest first.
func (s *PropertyStore) filter(keep func(models.Property) bool) []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Property{}
	for _, p := range s.items {
		if keep(p) {
			out = append(out, cloneProperty(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out
}

func (s *PropertyStore) GetByID(_ context.Context, id string) (models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return models.Property{}, repository.ErrPropertyNotFound
	}
	return cloneProperty(p), nil
}

func (s *PropertyStore) Update(_ context.Context, id string, update models.PropertyUpdate) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return models.Property{}, repository.ErrPropertyNotFound
	}
	p.Apply(update)
	p.UpdatedAt = time.Now().UTC()
	s.items[id] = p
	return cloneProperty(p), nil
}

func (s *PropertyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return repository.ErrPropertyNotFound
	}
	delete(s.items, id)
	delete(s.order, id)
	return nil
}

// NewStores returns a matched pair of empty stores.
func NewStores() repository.Stores {
	return repository.Stores{
		Users:      NewUserStore(),
		Properties: NewPropertyStore(),
		Ping:       func(context.Context) error { return nil },
		Close:      func(context.Context) error { return nil },
	}
}
