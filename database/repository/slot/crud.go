// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorly/database"
	"mentorly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return r.insertMany(ctx, slots)
}

// insertMany writes unordered so one duplicate doesn't stop the rest of the batch.
func (r *MongoSlotRepo) insertMany(ctx context.Context, slots []models.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(slots))
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.New().String()
		}
		if slots[i].CreatedAt.IsZero() {
			slots[i].CreatedAt = now
		}
		docs[i] = slots[i]
	}

	_, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(docs), nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
		dupes := 0
		for _, we := range bwe.WriteErrors {
			if we.Code != 11000 {
				return 0, fmt.Errorf("failed to insert slots: %w", err)
			}
			dupes++
		}
		return len(docs) - dupes, nil
	}
	return 0, fmt.Errorf("failed to insert slots: %w", err)
}

func (r *MongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *MongoSlotRepo) ListByOffering(ctx context.Context, offeringID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"offeringId": offeringID}
	if date != "" {
		filter["date"] = date
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *MongoSlotRepo) DeleteByOffering(ctx context.Context, offeringID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"offeringId": offeringID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoSlotRepo) ReplaceForOffering(ctx context.Context, offeringID string, slots []models.Slot) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	inserted := 0
	err := database.WithTransaction(ctx, r.coll.Database().Client(), func(sc mongo.SessionContext) error {
		if _, err := r.coll.DeleteMany(sc, bson.M{"offeringId": offeringID}); err != nil {
			return fmt.Errorf("delete slots: %w", err)
		}
		n, err := r.insertMany(sc, slots)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("slot regeneration transaction failed: %w", err)
	}
	return inserted, nil
}

func (r *MongoSlotRepo) MaxDate(ctx context.Context, offeringID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetProjection(bson.M{"date": 1})
	var doc struct {
		Date string `bson:"date"`
	}
	err := r.coll.FindOne(ctx, bson.M{"offeringId": offeringID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.Date, nil
}
