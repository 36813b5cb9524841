package templateRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the templates collection.
func (r *MongoTemplateRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// At most one active template per specialist.
		{
			Keys: bson.D{{Key: "specialistId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}).
				SetName("one_active_per_specialist"),
		},
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("specialist_created_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create template indexes: %w", err)
	}
	return nil
}
