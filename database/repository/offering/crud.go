package offeringRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoOfferingRepo) Create(ctx context.Context, o *models.Offering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert offering: %w", err)
	}
	return nil
}

func (r *MongoOfferingRepo) GetByID(ctx context.Context, id string) (*models.Offering, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o models.Offering
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOfferingRepo) Update(ctx context.Context, o *models.Offering) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": o.ID}, o)
	if err != nil {
		return fmt.Errorf("failed to update offering: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *MongoOfferingRepo) ListPublishedBySlotMode(ctx context.Context, mode models.SlotMode) ([]models.Offering, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"status": models.OfferingStatusPublished, "slotMode": mode}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Offering
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
