package commissionRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the commission config collection.
func (r *MongoCommissionRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "version", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("unique_version"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create commission indexes: %w", err)
	}
	return nil
}
