package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"estatescout/internal/models"
)

type MongoPropertyRepository struct {
	coll *mongo.Collection
}

var _ PropertyStore = (*MongoPropertyRepository)(nil)

func NewMongoPropertyRepository(db *mongo.Database) *MongoPropertyRepository {
	return &MongoPropertyRepository{coll: db.Collection(propertiesCollection)}
}

func (r *MongoPropertyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	return err
}

func (r *MongoPropertyRepository) Create(ctx context.Context, p models.Property) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *MongoPropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoPropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	return r.find(ctx, bson.D{{Key: "owner", Value: ownerID}})
}

func (r *MongoPropertyRepository) find(ctx context.Context, filter bson.D) ([]models.Property, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *MongoPropertyRepository) GetByID(ctx context.Context, id string) (models.Property, error) {
	var p models.Property
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, ErrPropertyNotFound
	}
	return p, err
}

func (r *MongoPropertyRepository) Update(ctx context.Context, id string, update models.PropertyUpdate) (models.Property, error) {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.Type != nil {
		set = append(set, bson.E{Key: "type", Value: *update.Type})
	}
	if update.Amenities != nil {
		set = append(set, bson.E{Key: "amenities", Value: update.Amenities})
	}
	if update.Area != nil {
		set = append(set, bson.E{Key: "area", Value: *update.Area})
	}
	if update.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *update.Price})
	}
	if update.Location != nil {
		set = append(set, bson.E{Key: "location", Value: *update.Location})
	}

	var p models.Property
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, ErrPropertyNotFound
	}
	return p, err
}

func (r *MongoPropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
