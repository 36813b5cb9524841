package enrollmentRepo

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

func (r *MongoEnrollmentRepo) Upsert(ctx context.Context, e *models.Enrollment) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"customerId": e.CustomerID, "offeringId": e.OfferingID}
	set := bson.M{
		"specialistId":  e.SpecialistID,
		"status":        models.EnrollmentStatusActive,
		"paymentStatus": e.PaymentStatus,
		"updatedAt":     now,
	}
	if e.BookingID != "" {
		set["bookingId"] = e.BookingID
	}
	if e.PaymentID != "" {
		set["paymentId"] = e.PaymentID
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"id": uuid.New().String(), "enrolledAt": now},
		"$unset":       bson.M{"refundedAt": ""},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted first; ours now matches the existing document.
		res, err = r.coll.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert enrollment: %w", err)
	}

	if err := r.coll.FindOne(ctx, filter).Decode(e); err != nil {
		return false, fmt.Errorf("failed to reload enrollment: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (r *MongoEnrollmentRepo) GetByCustomerAndOffering(ctx context.Context, customerID, offeringID string) (*models.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var e models.Enrollment
	err := r.coll.FindOne(ctx, bson.M{"customerId": customerID, "offeringId": offeringID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *MongoEnrollmentRepo) MarkRefunded(ctx context.Context, customerID, offeringID, paymentID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"customerId": customerID,
			"offeringId": offeringID,
			"paymentId":  paymentID,
			"status":     models.EnrollmentStatusActive,
		},
		bson.M{"$set": bson.M{
			"status":        models.EnrollmentStatusRefunded,
			"paymentStatus": models.PaymentStatusRefunded,
			"refundedAt":    at,
			"updatedAt":     at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to refund enrollment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *MongoEnrollmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Enrollment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"customerId": customerID},
		options.Find().SetSort(bson.D{{Key: "enrolledAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Enrollment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
