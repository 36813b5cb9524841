// File: database/repository/offering/interface.go
package offeringRepo

import (
	"context"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type OfferingRepository interface {
	Create(ctx context.Context, o *models.Offering) error
	GetByID(ctx context.Context, id string) (*models.Offering, error)
	Update(ctx context.Context, o *models.Offering) error
	// ListPublishedBySlotMode returns published offerings materialized with mode.
	ListPublishedBySlotMode(ctx context.Context, mode models.SlotMode) ([]models.Offering, error)
}

type MongoOfferingRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferingRepo constructs a new MongoDB OfferingRepository.
func NewMongoOfferingRepo(db *mongo.Database) *MongoOfferingRepo {
	return &MongoOfferingRepo{coll: db.Collection("offerings")}
}
