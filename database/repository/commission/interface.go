// File: database/repository/commission/interface.go
package commissionRepo

import (
	"context"

	"mentorly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CommissionRepository is append-only: versions are inserted, never updated.
type CommissionRepository interface {
	// Insert stores cfg; a taken version number yields models.ErrWriteConflict.
	Insert(ctx context.Context, cfg *models.CommissionConfig) error
	// Latest returns the highest version, or models.ErrRecordNotFound.
	Latest(ctx context.Context) (*models.CommissionConfig, error)
	// History returns every version, newest first.
	History(ctx context.Context, limit int64) ([]models.CommissionConfig, error)
}

type MongoCommissionRepo struct {
	coll *mongo.Collection
}

// NewMongoCommissionRepo constructs a new MongoDB CommissionRepository.
func NewMongoCommissionRepo(db *mongo.Database) *MongoCommissionRepo {
	return &MongoCommissionRepo{coll: db.Collection("commission_configs")}
}
