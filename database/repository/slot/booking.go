package slotRepo

import (
	"context"
	"fmt"
	"time"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (r *MongoSlotRepo) Book(ctx context.Context, prev models.Slot, entry models.SlotBooking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":          prev.ID,
		"status":      prev.Status,
		"bookedCount": prev.BookedCount,
		"version":     prev.Version,
	}
	update := bson.M{
		"$inc":  bson.M{"bookedCount": 1, "version": 1},
		"$set":  bson.M{"status": prev.StatusFor(prev.BookedCount + 1)},
		"$push": bson.M{"bookings": entry},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWriteConflict
	}
	return nil
}

func (r *MongoSlotRepo) Release(ctx context.Context, prev models.Slot, bookingID string, cancellation *models.Cancellation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":          prev.ID,
		"bookedCount": prev.BookedCount,
		"version":     prev.Version,
		"bookings": bson.M{"$elemMatch": bson.M{
			"bookingId": bookingID,
			"status":    bson.M{"$ne": models.BookingStatusCancelled},
		}},
	}
	set := bson.M{
		"status":            prev.StatusFor(prev.BookedCount - 1),
		"bookings.$.status": models.BookingStatusCancelled,
	}
	if cancellation != nil {
		set["bookings.$.cancellation"] = cancellation
	}
	update := bson.M{
		"$inc": bson.M{"bookedCount": -1, "version": 1},
		"$set": set,
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrWriteConflict
	}
	return nil
}

func (r *MongoSlotRepo) UpdateBookingEntry(ctx context.Context, slotID, bookingID, status, meetingRef string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"bookings.$.status": status}
	if meetingRef != "" {
		set["bookings.$.meetingRef"] = meetingRef
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": slotID, "bookings.bookingId": bookingID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update slot booking entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}
