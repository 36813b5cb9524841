package paymentRepo

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

func (r *MongoPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Payment
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoPaymentRepo) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"externalIntentId": intentID})
}

func (r *MongoPaymentRepo) GetByEventID(ctx context.Context, eventID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"externalEventId": eventID},
		bson.M{"failureEventIds": eventID},
	}})
}

func (r *MongoPaymentRepo) LatestForService(ctx context.Context, customerID, serviceKey string, since time.Time) (*models.Payment, error) {
	filter := bson.M{
		"customerId": customerID,
		"serviceKey": serviceKey,
		"status":     bson.M{"$in": bson.A{models.PaymentStatusPending, models.PaymentStatusCompleted}},
		"createdAt":  bson.M{"$gte": since},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoPaymentRepo) ListBySpecialist(ctx context.Context, specialistID string) ([]models.Payment, error) {
	return r.findMany(ctx, bson.M{"specialistId": specialistID})
}

func (r *MongoPaymentRepo) ListCompletedForOffering(ctx context.Context, customerID, offeringID string) ([]models.Payment, error) {
	return r.findMany(ctx, bson.M{
		"customerId": customerID,
		"offeringId": offeringID,
		"status":     models.PaymentStatusCompleted,
	})
}

func (r *MongoPaymentRepo) findMany(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Payment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoPaymentRepo) GetGatewayCustomer(ctx context.Context, customerID string) (*models.GatewayCustomer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var gc models.GatewayCustomer
	err := r.customers.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&gc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gc, nil
}

func (r *MongoPaymentRepo) SaveGatewayCustomer(ctx context.Context, gc *models.GatewayCustomer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if gc.CreatedAt.IsZero() {
		gc.CreatedAt = time.Now().UTC()
	}
	_, err := r.customers.InsertOne(ctx, gc)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateKey
	}
	return err
}
