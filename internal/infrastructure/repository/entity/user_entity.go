package entity

import (
	"time"

	"atlas-core-connect-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoUserDoc represents an application user in MongoDB
type MongoUserDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ExternalID string             `bson:"externalId,omitempty"`
	Email      string             `bson:"email"`
	Name       string             `bson:"name,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoUserDoc) ToDomain() *domain.User {
	id := d.ExternalID
	if id == "" {
		id = d.ID.Hex()
	}
	return &domain.User{
		ID:        id,
		Email:     d.Email,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoUserDocFromDomain converts a domain entity to a MongoDB document
func MongoUserDocFromDomain(user *domain.User) *MongoUserDoc {
	doc := &MongoUserDoc{
		ExternalID: user.ID,
		Email:      user.Email,
		Name:       user.Name,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}

	if objID, err := primitive.ObjectIDFromHex(user.ID); err == nil {
		doc.ID = objID
		doc.ExternalID = ""
	}
	return doc
}
