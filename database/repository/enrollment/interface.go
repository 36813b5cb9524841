// File: database/repository/enrollment/interface.go
package enrollmentRepo

import (
	"context"
	"time"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type EnrollmentRepository interface {
	// Upsert finds the enrollment for (e.CustomerID, e.OfferingID) and updates it, or creates it.
	// On return e holds the stored document; created reports whether it was new.
	Upsert(ctx context.Context, e *models.Enrollment) (created bool, err error)
	GetByCustomerAndOffering(ctx context.Context, customerID, offeringID string) (*models.Enrollment, error)
	// MarkRefunded revokes the active enrollment for (customerID, offeringID) if it is
	// linked to paymentID. An enrollment held through another payment is left alone.
	MarkRefunded(ctx context.Context, customerID, offeringID, paymentID string, at time.Time) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.Enrollment, error)
}

type MongoEnrollmentRepo struct {
	coll *mongo.Collection
}

// NewMongoEnrollmentRepo constructs a new MongoDB EnrollmentRepository.
func NewMongoEnrollmentRepo(db *mongo.Database) *MongoEnrollmentRepo {
	return &MongoEnrollmentRepo{coll: db.Collection("enrollments")}
}
