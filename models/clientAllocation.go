package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientAllocation binds one client to a share of a trip's cargo.
type ClientAllocation struct {
	ID             int              `gorm:"primary_key" json:"id"`
	TripId         int              `gorm:"index;not null" json:"trip_id"`
	ClientId       int              `gorm:"index;not null" json:"client_id"`
	Qty            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"qty"`
	DeliveryStatus DeliveryStatus   `gorm:"type:enum('NOT_DELIVERED','DELIVERED');default:'NOT_DELIVERED'" json:"delivery_status"`
	ShortageQty    *decimal.Decimal `gorm:"type:decimal(20,4)" json:"shortage_qty"`
	// AgreedPrice is the sale unit price agreed with the client. Nil until the
	// first invoice is raised.
	AgreedPrice *decimal.Decimal `gorm:"type:decimal(20,4)" json:"agreed_price"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClientAllocation struct {
	ClientId int             `json:"client_id" validate:"required"`
	Qty      decimal.Decimal `json:"qty"`
}

// DeliveredQty is the quantity actually handed over: the allocated share minus
// any recorded shortage. The invoicing collaborator bills this value.
func (ca *ClientAllocation) DeliveredQty() decimal.Decimal {
	return ca.Qty.Sub(utils.DecimalOrZero(ca.ShortageQty))
}

// CanAllocate checks the trip capacity invariant: the allocated total across
// all of a trip's allocations never exceeds its nominal quantity. exceptId
// excludes the allocation being re-quantified (0 for a new one).
func CanAllocate(nominalQty decimal.Decimal, existing []ClientAllocation, qty decimal.Decimal, exceptId int) bool {
	total := qty
	for _, allocation := range existing {
		if allocation.ID == exceptId {
			continue
		}
		total = total.Add(allocation.Qty)
	}
	return total.LessThanOrEqual(nominalQty)
}

// RecordAllocation creates an allocation for the client on the trip. If the
// client already holds one, the existing allocation is returned untouched.
// Enforces the capacity invariant at write time only; emits a ClientAssigned
// alert on first creation.
func RecordAllocation(ctx context.Context, tx *gorm.DB, trip *Trip, input NewClientAllocation) (*ClientAllocation, bool, error) {
	if input.Qty.IsNegative() {
		return nil, false, errors.New("allocation quantity cannot be negative")
	}

	for i := range trip.Allocations {
		if trip.Allocations[i].ClientId == input.ClientId {
			return &trip.Allocations[i], false, nil
		}
	}

	var count int64
	if err := tx.Model(&Client{}).Where("id = ?", input.ClientId).Count(&count).Error; err != nil {
		return nil, false, err
	}
	if count <= 0 {
		return nil, false, errors.New("client not found")
	}

	if !CanAllocate(trip.NominalQty, trip.Allocations, input.Qty, 0) {
		return nil, false, errors.New("allocated quantity exceeds the trip's nominal quantity")
	}

	allocation := ClientAllocation{
		TripId:         trip.ID,
		ClientId:       input.ClientId,
		Qty:            input.Qty,
		DeliveryStatus: DeliveryStatusNotDelivered,
	}
	if err := tx.Create(&allocation).Error; err != nil {
		return nil, false, err
	}
	trip.Allocations = append(trip.Allocations, allocation)

	if err := EmitAlert(ctx, tx, AlertEventClientAssigned, trip.ID, &allocation.ClientId, &allocation); err != nil {
		return nil, false, err
	}

	return &trip.Allocations[len(trip.Allocations)-1], true, nil
}

// Allocation re-binding and sale pricing are trip mutations and live in the
// workflow package, where they run under the per-trip posting lock.
