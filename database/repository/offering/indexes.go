package offeringRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the offerings collection.
func (r *MongoOfferingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}},
			Options: options.Index().SetName("specialist_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "slotMode", Value: 1}},
			Options: options.Index().SetName("status_slot_mode_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create offering indexes: %w", err)
	}
	return nil
}
