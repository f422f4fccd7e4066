package workflow

import (
	"context"
	"errors"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateAllocationClient rebinds an allocation to another client and/or
// quantity. Rejected when the reallocated total would exceed the trip's
// nominal quantity, or once delivery of the allocation has completed. Runs
// under the per-trip posting lock: the capacity check is read-then-write and
// must see the latest allocation set.
func UpdateAllocationClient(ctx context.Context, tripId int, allocationId int, newClientId int, qty decimal.Decimal) (*models.Trip, error) {
	db := config.GetDB()

	trip, err := models.GetTrip(ctx, tripId)
	if err != nil {
		return nil, err
	}
	if _, err := AuthorizeFromContext(ctx, trip); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Enforce strict per-trip ordering across instances.
		if err := AcquireTripPostingLock(tx.WithContext(ctx), tripId); err != nil {
			return err
		}
		defer ReleaseTripPostingLock(tx.WithContext(ctx), tripId)

		lockedTrip, err := utils.FetchModelTx[models.Trip](tx.WithContext(ctx), tripId, "Checkpoints", "Allocations")
		if err != nil {
			return err
		}
		trip = lockedTrip

		target := findAllocation(trip, allocationId)
		if target == nil {
			return utils.ErrorRecordNotFound
		}
		if target.DeliveryStatus == models.DeliveryStatusDelivered {
			return errors.New("allocation has already been delivered")
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Client{}).Where("id = ?", newClientId).Count(&count).Error; err != nil {
			return err
		}
		if count <= 0 {
			return errors.New("client not found")
		}
		if qty.IsNegative() {
			return errors.New("allocation quantity cannot be negative")
		}
		if !models.CanAllocate(trip.NominalQty, trip.Allocations, qty, allocationId) {
			return errors.New("allocated quantity exceeds the trip's nominal quantity")
		}

		// A shortage already recorded for the old (trip, client) pair keeps its
		// client binding; the allocation only moves while undelivered, so none
		// can exist yet for the new pair.
		return tx.WithContext(ctx).Model(&models.ClientAllocation{}).Where("id = ?", allocationId).
			Updates(map[string]interface{}{
				"ClientId": newClientId,
				"Qty":      qty,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}

// RecordSalePrice sets the agreed sale unit price on an allocation. The
// invoicing collaborator consumes DeliveredQty() alongside this price. Runs
// under the per-trip posting lock so a concurrent shortage report prices
// against a committed value.
func RecordSalePrice(ctx context.Context, tripId int, allocationId int, price decimal.Decimal) (*models.Trip, error) {
	db := config.GetDB()

	trip, err := models.GetTrip(ctx, tripId)
	if err != nil {
		return nil, err
	}
	if _, err := AuthorizeFromContext(ctx, trip); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Enforce strict per-trip ordering across instances.
		if err := AcquireTripPostingLock(tx.WithContext(ctx), tripId); err != nil {
			return err
		}
		defer ReleaseTripPostingLock(tx.WithContext(ctx), tripId)

		lockedTrip, err := utils.FetchModelTx[models.Trip](tx.WithContext(ctx), tripId, "Checkpoints", "Allocations")
		if err != nil {
			return err
		}
		trip = lockedTrip

		if findAllocation(trip, allocationId) == nil {
			return utils.ErrorRecordNotFound
		}
		if price.IsNegative() {
			return errors.New("sale price cannot be negative")
		}

		return tx.WithContext(ctx).Model(&models.ClientAllocation{}).Where("id = ?", allocationId).
			Update("AgreedPrice", price).Error
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}
