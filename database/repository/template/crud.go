package templateRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/database"
	"mentorly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoTemplateRepo) Activate(ctx context.Context, tmpl *models.AvailabilityTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	tmpl.IsActive = true
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	err := database.WithTransaction(ctx, r.coll.Database().Client(), func(sc mongo.SessionContext) error {
		_, err := r.coll.UpdateMany(sc,
			bson.M{"specialistId": tmpl.SpecialistID, "isActive": true},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
		)
		if err != nil {
			return fmt.Errorf("deactivate previous templates: %w", err)
		}
		if _, err := r.coll.InsertOne(sc, tmpl); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return models.ErrWriteConflict
			}
			return fmt.Errorf("insert template: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("template activation failed: %w", err)
	}
	return nil
}

func (r *MongoTemplateRepo) GetActive(ctx context.Context, specialistID string) (*models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tmpl models.AvailabilityTemplate
	err := r.coll.FindOne(ctx, bson.M{"specialistId": specialistID, "isActive": true}).Decode(&tmpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *MongoTemplateRepo) ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"specialistId": specialistID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.AvailabilityTemplate
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
