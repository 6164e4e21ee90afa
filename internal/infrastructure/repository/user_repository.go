package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/infrastructure/repository/entity"
	"atlas-core-connect-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *mongo.Database) ports.UserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// FindByIdentifier looks a user up by email, external ID, or object ID.
// Returns (nil, nil) when no user matches.
func (r *MongoUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var filter bson.M
	switch {
	case strings.Contains(identifier, "@"):
		filter = bson.M{"email": identifier}
	default:
		clauses := bson.A{bson.M{"externalId": identifier}}
		if objID, err := primitive.ObjectIDFromHex(identifier); err == nil {
			clauses = append(clauses, bson.M{"_id": objID})
		}
		filter = bson.M{"$or": clauses}
	}

	var doc entity.MongoUserDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return doc.ToDomain(), nil
}

// Create inserts a new user
func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := entity.MongoUserDocFromDomain(user)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
