package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the payments and gateway customer collections.
func (r *MongoPaymentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_idempotency_key"),
		},
		{
			Keys:    bson.D{{Key: "externalIntentId", Value: 1}},
			Options: options.Index().SetName("intent_idx"),
		},
		// Sparse so that unsettled payments don't collide on a missing value.
		{
			Keys:    bson.D{{Key: "externalEventId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_event_id"),
		},
		{
			Keys:    bson.D{{Key: "failureEventIds", Value: 1}},
			Options: options.Index().SetName("failure_event_idx"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "serviceKey", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("customer_service_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "specialistId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("specialist_created_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}

	_, err := r.customers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "customerId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_customer"),
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway customer indexes: %w", err)
	}
	return nil
}
