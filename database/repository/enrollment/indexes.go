package enrollmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the enrollments collection.
func (r *MongoEnrollmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "offeringId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("customer_offering_unique"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create enrollment indexes: %w", err)
	}
	return nil
}
