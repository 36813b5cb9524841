package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (r *MongoPaymentRepo) MarkCompleted(ctx context.Context, id, eventID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":              id,
		"status":          bson.M{"$in": bson.A{models.PaymentStatusPending, models.PaymentStatusFailed}},
		"externalEventId": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"status":          models.PaymentStatusCompleted,
			"externalEventId": eventID,
			"completedAt":     at,
			"updatedAt":       at,
		},
		"$unset": bson.M{"failureCode": "", "failureMessage": ""},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWriteConflict
	}
	return nil
}

func (r *MongoPaymentRepo) MarkFailed(ctx context.Context, id, eventID, code, message string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":              id,
		"status":          bson.M{"$in": bson.A{models.PaymentStatusPending, models.PaymentStatusFailed}},
		"failureEventIds": bson.M{"$ne": eventID},
	}
	update := bson.M{
		"$set": bson.M{
			"status":         models.PaymentStatusFailed,
			"failureCode":    code,
			"failureMessage": message,
			"failedAt":       at,
			"updatedAt":      at,
		},
		"$push": bson.M{"failureEventIds": eventID},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWriteConflict
	}
	return nil
}

func (r *MongoPaymentRepo) MarkRefunded(ctx context.Context, id, refundID, reason string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.PaymentStatusCompleted},
		bson.M{"$set": bson.M{
			"status":       models.PaymentStatusRefunded,
			"refundId":     refundID,
			"refundReason": reason,
			"refundedAt":   at,
			"updatedAt":    at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to refund payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWriteConflict
	}
	return nil
}
