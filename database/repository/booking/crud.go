package bookingRepo

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

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.UpdatedAt = b.CreatedAt
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	prevVersion := b.Version
	b.Version++
	b.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": b.ID, "version": prevVersion}, b)
	if err != nil {
		b.Version = prevVersion
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		b.Version = prevVersion
		return models.ErrWriteConflict
	}
	return nil
}

func (r *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

func (r *MongoBookingRepo) ListBySpecialist(ctx context.Context, specialistID, status string) ([]models.Booking, error) {
	filter := bson.M{"specialistId": specialistID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
