package repository

import (
	"context"
	"errors"
	"time"

	"estatescout/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// UserStore is the credential store. Email is unique; lookups are by email or id.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error)
	Delete(ctx context.Context, id string) error
	AddPost(ctx context.Context, userID, propertyID string) error
	RemovePost(ctx context.Context, userID, propertyID string) error
}

type PropertyStore interface {
	Create(ctx context.Context, property models.Property) error
	List(ctx context.Context) ([]models.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error)
	GetByID(ctx context.Context, id string) (models.Property, error)
	Update(ctx context.Context, id string, update models.PropertyUpdate) (models.Property, error)
	Delete(ctx context.Context, id string) error
}

// Stores bundles the store implementations selected by configuration.
type Stores struct {
	Users      UserStore
	Properties PropertyStore
	Ping       func(ctx context.Context) error
	Close      func(ctx context.Context) error
}

// stampCreated fills creation timestamps the caller left unset.
func stampCreated(user *models.User) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
}
