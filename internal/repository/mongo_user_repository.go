package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"estatescout/internal/models"
)

const (
	usersCollection      = "users"
	propertiesCollection = "properties"
)

// MongoUserRepository keeps users as documents keyed by their string id.
type MongoUserRepository struct {
	coll *mongo.Collection
}

var _ UserStore = (*MongoUserRepository)(nil)

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index the store relies on for
// duplicate detection.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user models.User) error {
	stampCreated(&user)
	if user.Posts == nil {
		user.Posts = []string{}
	}

	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *MongoUserRepository) GetMany(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, user := range users {
		out[user.ID] = user
	}
	return out, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if update.Name != "" {
		set = append(set, bson.E{Key: "name", Value: update.Name})
	}
	if update.Phone != "" {
		set = append(set, bson.E{Key: "phone", Value: update.Phone})
	}
	if update.ProfilePicture != "" {
		set = append(set, bson.E{Key: "profile_picture", Value: update.ProfilePicture})
	}

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) AddPost(ctx context.Context, userID, propertyID string) error {
	return r.updateOne(ctx, userID, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "posts", Value: propertyID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	})
}

func (r *MongoUserRepository) RemovePost(ctx context.Context, userID, propertyID string) error {
	return r.updateOne(ctx, userID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "posts", Value: propertyID}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id string, update bson.D) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
