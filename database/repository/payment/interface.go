// File: database/repository/payment/interface.go
package paymentRepo

import (
	"context"
	"time"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	// GetByEventID finds the payment that already consumed eventID, as a success or a failure.
	GetByEventID(ctx context.Context, eventID string) (*models.Payment, error)
	// LatestForService returns the newest pending or completed payment of the customer for
	// serviceKey created at or after since.
	LatestForService(ctx context.Context, customerID, serviceKey string, since time.Time) (*models.Payment, error)
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.Payment, error)
	// ListCompletedForOffering returns the customer's completed payments for offeringID, newest first.
	ListCompletedForOffering(ctx context.Context, customerID, offeringID string) ([]models.Payment, error)

	// MarkCompleted moves a pending or failed payment to completed and records eventID.
	// It returns models.ErrWriteConflict if the payment already has a settlement event.
	MarkCompleted(ctx context.Context, id, eventID string, at time.Time) error
	// MarkFailed records a failure event once; repeats of eventID return models.ErrWriteConflict.
	MarkFailed(ctx context.Context, id, eventID, code, message string, at time.Time) error
	MarkRefunded(ctx context.Context, id, refundID, reason string, at time.Time) error

	GetGatewayCustomer(ctx context.Context, customerID string) (*models.GatewayCustomer, error)
	SaveGatewayCustomer(ctx context.Context, gc *models.GatewayCustomer) error
}

type MongoPaymentRepo struct {
	coll      *mongo.Collection
	customers *mongo.Collection
}

// NewMongoPaymentRepo constructs a new MongoDB PaymentRepository.
func NewMongoPaymentRepo(db *mongo.Database) *MongoPaymentRepo {
	return &MongoPaymentRepo{
		coll:      db.Collection("payments"),
		customers: db.Collection("gateway_customers"),
	}
}
