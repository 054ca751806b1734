package models

import "time"

type UserRole string

const (
	UserRoleAgent UserRole = "agent"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	PasswordHash   []byte    `bson:"password_hash"`
	Name           string    `bson:"name"`
	Phone          string    `bson:"phone,omitempty"`
	ProfilePicture string    `bson:"profile_picture,omitempty"`
	Role           UserRole  `bson:"role"`
	Posts          []string  `bson:"posts"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// ProfileUpdate carries the editable profile fields. Empty values keep the
// stored ones.
type ProfileUpdate struct {
	Name           string
	Phone          string
	ProfilePicture string
}

func (u *User) Apply(update ProfileUpdate) {
	if update.Name != "" {
		u.Name = update.Name
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	if update.ProfilePicture != "" {
		u.ProfilePicture = update.ProfilePicture
	}
}
