// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Update replaces b if its stored version still equals b.Version, then bumps it.
	Update(ctx context.Context, b *models.Booking) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListBySpecialist(ctx context.Context, specialistID, status string) ([]models.Booking, error)
}

type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}
