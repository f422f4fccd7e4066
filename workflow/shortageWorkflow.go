package workflow

import (
	"context"
	"errors"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ComputeTransportCost derives the trip's transport-cost obligation after
// shortages: gross cost (unit price x nominal quantity) minus the total
// monetary shortage, floored at zero. Cession trips carry no cost at all.
func ComputeTransportCost(cession bool, unitPrice decimal.Decimal, nominalQty decimal.Decimal, totalShortageAmount decimal.Decimal) decimal.Decimal {
	if cession {
		return decimal.Zero
	}
	gross := unitPrice.Mul(nominalQty)
	return utils.MaxDecimalZero(gross.Sub(totalShortageAmount))
}

// recordShortage upserts the shortage for the allocation's (trip, client)
// pair, marks the allocation delivered, debits the tanker pool once (first
// report only; corrections never re-move stock), and triggers the transport
// cost recompute. Runs inside the caller's transaction.
func recordShortage(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, trip *models.Trip, allocation *models.ClientAllocation, qty decimal.Decimal, authorId int) error {
	if qty.IsNegative() {
		return errors.New("shortage quantity cannot be negative")
	}
	if qty.GreaterThan(allocation.Qty) {
		return errors.New("shortage cannot exceed the allocated quantity")
	}

	amount := models.ShortageAmount(qty, allocation.AgreedPrice)
	_, firstWrite, err := models.UpsertShortage(tx, trip.ID, allocation.ClientId, qty, amount, authorId)
	if err != nil {
		config.LogError(logger, "shortageWorkflow.go", "recordShortage", "UpsertShortage", allocation.ID, err)
		return err
	}

	wasDelivered := allocation.DeliveryStatus == models.DeliveryStatusDelivered
	if err := tx.Model(&models.ClientAllocation{}).Where("id = ?", allocation.ID).
		Updates(map[string]interface{}{
			"DeliveryStatus": models.DeliveryStatusDelivered,
			"ShortageQty":    qty,
		}).Error; err != nil {
		config.LogError(logger, "shortageWorkflow.go", "recordShortage", "MarkDelivered", allocation.ID, err)
		return err
	}
	allocation.DeliveryStatus = models.DeliveryStatusDelivered
	allocation.ShortageQty = &qty

	// The pool gives up the allocation's full share exactly once: the
	// delivered part went to the client, the shortage was lost in transit.
	if firstWrite && allocation.Qty.IsPositive() {
		tankerStock, err := models.GetOrCreateTankerStock(tx, trip.ProductId)
		if err != nil {
			config.LogError(logger, "shortageWorkflow.go", "recordShortage", "GetTankerStock", trip.ProductId, err)
			return err
		}
		if err := DebitStock(tx, logger, tankerStock, allocation.Qty, "Client delivery"); err != nil {
			return err
		}
	}

	if !wasDelivered {
		if err := models.EmitAlert(ctx, tx, models.AlertEventClientDelivered, trip.ID, &allocation.ClientId, allocation); err != nil {
			return err
		}
	}

	return RecomputeTransportCost(tx, logger, trip)
}

// RecomputeTransportCost refreshes the trip's transport cost from the current
// shortage records and propagates it to every still-open transport-cost
// obligation. No-op for cession trips.
func RecomputeTransportCost(tx *gorm.DB, logger *logrus.Logger, trip *models.Trip) error {
	if trip.IsCession() {
		return nil
	}

	totalShortageAmount, err := models.TotalShortageAmount(tx, trip.ID)
	if err != nil {
		config.LogError(logger, "shortageWorkflow.go", "RecomputeTransportCost", "TotalShortageAmount", trip.ID, err)
		return err
	}

	newCost := ComputeTransportCost(false, trip.UnitPrice, trip.NominalQty, totalShortageAmount)
	if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("TransportCost", newCost).Error; err != nil {
		return err
	}
	trip.TransportCost = newCost

	if err := models.AmendOpenTransportObligations(tx, trip.ID, newCost); err != nil {
		config.LogError(logger, "shortageWorkflow.go", "RecomputeTransportCost", "AmendObligations", trip.ID, err)
		return err
	}
	return nil
}

// RecordShortage is the standalone entry point for reporting a shortage
// outside a transition (e.g. a correction after unloading). It wraps the same
// logic in its own transaction and per-trip lock.
func RecordShortage(ctx context.Context, tripId int, clientId int, qty decimal.Decimal) (*models.Trip, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	trip, err := models.GetTrip(ctx, tripId)
	if err != nil {
		return nil, err
	}
	caller, err := AuthorizeFromContext(ctx, trip)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Enforce strict per-trip ordering across instances.
		if err := AcquireTripPostingLock(tx.WithContext(ctx), tripId); err != nil {
			return err
		}
		defer ReleaseTripPostingLock(tx.WithContext(ctx), tripId)

		// Re-read under the lock: delivery status and agreed price may have
		// moved since the authorization read.
		lockedTrip, err := utils.FetchModelTx[models.Trip](tx.WithContext(ctx), tripId, "Checkpoints", "Allocations")
		if err != nil {
			return err
		}
		trip = lockedTrip

		var allocation *models.ClientAllocation
		for i := range trip.Allocations {
			if trip.Allocations[i].ClientId == clientId {
				allocation = &trip.Allocations[i]
				break
			}
		}
		if allocation == nil {
			return utils.ErrorRecordNotFound
		}

		return recordShortage(ctx, tx.WithContext(ctx), logger, trip, allocation, qty, caller.ID)
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}
