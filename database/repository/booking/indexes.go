package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("customer_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}, {Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("specialist_status_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}},
			Options: options.Index().SetName("slot_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
