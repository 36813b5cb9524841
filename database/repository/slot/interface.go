// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type SlotRepository interface {
	// CreateMany inserts slots, skipping ones that already exist for the same
	// (offering, date, startTime). It returns how many were written.
	CreateMany(ctx context.Context, slots []models.Slot) (int, error)
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	ListByOffering(ctx context.Context, offeringID, date string) ([]models.Slot, error)
	DeleteByOffering(ctx context.Context, offeringID string) (int64, error)
	// ReplaceForOffering deletes every slot of the offering and inserts slots atomically.
	ReplaceForOffering(ctx context.Context, offeringID string, slots []models.Slot) (int, error)
	// MaxDate returns the latest materialized date of the offering, or "" when it has none.
	MaxDate(ctx context.Context, offeringID string) (string, error)

	// Book adds entry to the slot if it is still exactly as observed in prev.
	// It returns models.ErrWriteConflict when another writer got there first.
	Book(ctx context.Context, prev models.Slot, entry models.SlotBooking) error
	// Release frees the capacity held by bookingID if the slot is still as observed in prev.
	Release(ctx context.Context, prev models.Slot, bookingID string, cancellation *models.Cancellation) error
	// UpdateBookingEntry mirrors a booking's status and meeting onto its embedded entry.
	UpdateBookingEntry(ctx context.Context, slotID, bookingID, status, meetingRef string) error
}

type MongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo(db *mongo.Database) *MongoSlotRepo {
	return &MongoSlotRepo{coll: db.Collection("slots")}
}
