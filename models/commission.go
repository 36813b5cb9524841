package models

import "time"

// CommissionConfig is one immutable version of the platform's commission policy.
// New versions are appended; the most recently created active record is authoritative.
type CommissionConfig struct {
	ID                  string                  `bson:"id" json:"id"`
	Version             int                     `bson:"version" json:"version"`
	PlatformPercentage  float64                 `bson:"platformPercentage" json:"platformPercentage"`
	ByServiceType       map[ServiceType]float64 `bson:"byServiceType,omitempty" json:"byServiceType,omitempty"`
	MinimumChargeAmount int64                   `bson:"minimumChargeAmount" json:"minimumChargeAmount"`
	IsActive            bool                    `bson:"isActive" json:"isActive"`
	EffectiveDate       time.Time               `bson:"effectiveDate" json:"effectiveDate"`
	PreviousRate        *float64                `bson:"previousRate,omitempty" json:"previousRate,omitempty"`
	CreatedBy           string                  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt           time.Time               `bson:"createdAt" json:"createdAt"`
}
