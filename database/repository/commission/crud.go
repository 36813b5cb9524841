package commissionRepo

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

func (r *MongoCommissionRepo) Insert(ctx context.Context, cfg *models.CommissionConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, cfg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrWriteConflict
		}
		return fmt.Errorf("failed to insert commission config: %w", err)
	}
	return nil
}

func (r *MongoCommissionRepo) Latest(ctx context.Context) (*models.CommissionConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg models.CommissionConfig
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *MongoCommissionRepo) History(ctx context.Context, limit int64) ([]models.CommissionConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.CommissionConfig
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
