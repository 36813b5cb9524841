// FILE: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots collection.
func (r *MongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Re-materializing the same occurrence is a no-op.
		{
			Keys:    bson.D{{Key: "offeringId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("offering_date_start_unique"),
		},
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("specialist_date_start_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
