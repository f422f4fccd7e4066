package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentObligation is the core's hand-off to the external payment ledger:
// a pending amount owed for a trip (transport cost, customs fee, stamp fee).
// The payment collaborator settles them; the core creates and amends them.
type PaymentObligation struct {
	ID          int              `gorm:"primary_key" json:"id"`
	TripId      int              `gorm:"index;not null" json:"trip_id"`
	Type        ObligationType   `gorm:"type:enum('TransportCost','CustomsFee','CustomsStamp');not null" json:"type"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Status      ObligationStatus `gorm:"type:enum('Pending','Paid','Cancelled');default:'Pending'" json:"status"`
	Description string           `gorm:"size:255" json:"description"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreatePendingObligation files a new pending amount inside the caller's
// transaction.
func CreatePendingObligation(tx *gorm.DB, tripId int, obligationType ObligationType, amount decimal.Decimal, description string) (*PaymentObligation, error) {
	obligation := PaymentObligation{
		TripId:      tripId,
		Type:        obligationType,
		Amount:      amount,
		Status:      ObligationStatusPending,
		Description: description,
	}
	if err := tx.Create(&obligation).Error; err != nil {
		return nil, err
	}
	return &obligation, nil
}

// AmendOpenTransportObligations rewrites the amount on every still-pending
// transport-cost obligation of the trip. Settled or cancelled rows are left
// alone.
func AmendOpenTransportObligations(tx *gorm.DB, tripId int, newAmount decimal.Decimal) error {
	return tx.Model(&PaymentObligation{}).
		Where("trip_id = ? AND type = ? AND status = ?", tripId, ObligationTypeTransportCost, ObligationStatusPending).
		Update("Amount", newAmount).Error
}
