package models

import "time"

const MaxPropertyImages = 5

type Property struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Type        string    `bson:"type"`
	Amenities   []string  `bson:"amenities"`
	Area        float64   `bson:"area"`
	Price       float64   `bson:"price"`
	Location    string    `bson:"location"`
	Images      []string  `bson:"images"`
	Thumbnail   string    `bson:"thumbnail"`
	OwnerID     string    `bson:"owner"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// OwnerRef returns the identifier of the account that owns the listing.
func (p Property) OwnerRef() string {
	return p.OwnerID
}

// PropertyUpdate is a partial update; nil fields are left untouched.
type PropertyUpdate struct {
	Title       *string
	Description *string
	Type        *string
	Amenities   []string
	Area        *float64
	Price       *float64
	Location    *string
}

func (p *Property) Apply(update PropertyUpdate) {
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Type != nil {
		p.Type = *update.Type
	}
	if update.Amenities != nil {
		p.Amenities = update.Amenities
	}
	if update.Area != nil {
		p.Area = *update.Area
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Location != nil {
		p.Location = *update.Location
	}
}

// OwnerSummary is the subset of the owner exposed alongside a listing.
type OwnerSummary struct {
	ID             string
	Name           string
	Email          string
	ProfilePicture string
}

type PropertyWithOwner struct {
	Property
	Owner *OwnerSummary
}
