// File: database/repository/template/interface.go
package templateRepo

import (
	"context"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TemplateRepository interface {
	// Activate stores tmpl as the specialist's only active template.
	Activate(ctx context.Context, tmpl *models.AvailabilityTemplate) error
	GetActive(ctx context.Context, specialistID string) (*models.AvailabilityTemplate, error)
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityTemplate, error)
}

type MongoTemplateRepo struct {
	coll *mongo.Collection
}

// NewMongoTemplateRepo constructs a new MongoDB TemplateRepository.
func NewMongoTemplateRepo(db *mongo.Database) *MongoTemplateRepo {
	return &MongoTemplateRepo{
		coll: db.Collection("availability_templates"),
	}
}
