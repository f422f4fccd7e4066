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

var (
	ErrAlreadyDeclared = errors.New("trip has already been declared")
	ErrNotAtCustoms    = errors.New("trip is not at customs")
)

// ComputeCustomsFee prices a declaration: the per-liter rate applied to the
// truck's full capacity, regardless of how much is left on board.
func ComputeCustomsFee(ratePerLiter decimal.Decimal, truckCapacity decimal.Decimal) decimal.Decimal {
	return ratePerLiter.Mul(truckCapacity)
}

// DeclareTrip files the customs declaration: computes the fee from the
// product category's rate and the truck capacity, files the fee and stamp
// obligations, and moves the trip to RECEIVED. A trip can only be declared
// once.
func DeclareTrip(ctx context.Context, tripId int) (*models.Trip, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	trip, err := models.GetTrip(ctx, tripId)
	if err != nil {
		return nil, err
	}
	if _, err := AuthorizeFromContext(ctx, trip); err != nil {
		return nil, err
	}

	product, err := models.GetProduct(ctx, trip.ProductId)
	if err != nil {
		return nil, err
	}
	rate, err := models.GetCustomsFeeRate(ctx, product.Category)
	if err != nil {
		config.LogError(logger, "customsWorkflow.go", "DeclareTrip", "GetCustomsFeeRate", product.Category, err)
		return nil, err
	}
	truck, err := models.GetTruck(ctx, trip.TruckId)
	if err != nil {
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

		if trip.IsDeclared() {
			return ErrAlreadyDeclared
		}
		if trip.State != models.TripStateCustoms && trip.State != models.TripStateReceived {
			return ErrNotAtCustoms
		}

		fee := ComputeCustomsFee(rate.RatePerLiter, truck.CapacityQty)
		if fee.IsPositive() {
			if _, err := models.CreatePendingObligation(tx.WithContext(ctx), trip.ID, models.ObligationTypeCustomsFee, fee, "Customs declaration fee"); err != nil {
				return err
			}
		}
		if rate.StampFee.IsPositive() {
			if _, err := models.CreatePendingObligation(tx.WithContext(ctx), trip.ID, models.ObligationTypeCustomsStamp, rate.StampFee, "Customs stamp fee"); err != nil {
				return err
			}
		}

		if err := tx.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", trip.ID).Update("Declared", true).Error; err != nil {
			return err
		}
		trip.Declared = utils.NewTrue()

		if err := models.ValidateCheckpoint(tx.WithContext(ctx), trip, models.CheckpointReceived); err != nil {
			return err
		}
		if err := models.EmitAlert(ctx, tx.WithContext(ctx), models.AlertEventTripDeclared, trip.ID, nil, trip); err != nil {
			return err
		}
		return setTripState(tx.WithContext(ctx), trip, models.TripStateReceived)
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}

// PassTripUndeclared moves a trip through customs without a declaration. No
// fees are filed; the trip is flagged so it can be reconciled later.
func PassTripUndeclared(ctx context.Context, tripId int) (*models.Trip, error) {
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

		if trip.IsDeclared() {
			return ErrAlreadyDeclared
		}
		if trip.State != models.TripStateCustoms {
			return ErrNotAtCustoms
		}

		if err := tx.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", trip.ID).Update("PassedUndeclared", true).Error; err != nil {
			return err
		}
		trip.PassedUndeclared = utils.NewTrue()

		if err := models.ValidateCheckpoint(tx.WithContext(ctx), trip, models.CheckpointReceived); err != nil {
			return err
		}
		return setTripState(tx.WithContext(ctx), trip, models.TripStateReceived)
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}

// ReleaseTrip archives a trip after customs: the Received checkpoint is
// re-validated (release timestamp) and the trip drops out of the active list.
// Works for declared and undeclared passages alike.
func ReleaseTrip(ctx context.Context, tripId int) (*models.Trip, error) {
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

		if trip.IsArchived() {
			return errors.New("trip has already been released")
		}

		if err := tx.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", trip.ID).Update("Released", true).Error; err != nil {
			return err
		}
		trip.Released = utils.NewTrue()

		if err := models.ValidateCheckpoint(tx.WithContext(ctx), trip, models.CheckpointReceived); err != nil {
			return err
		}
		return models.EmitAlert(ctx, tx.WithContext(ctx), models.AlertEventTripReleased, trip.ID, nil, trip)
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}

// BatchResult reports a batch operation: trips that went through and the
// per-trip failures that did not stop the rest.
type BatchResult struct {
	Trips  []*models.Trip `json:"trips"`
	Errors map[int]string `json:"errors"`
}

// DeclareTrips declares a set of trips with per-item failure isolation: one
// trip failing (already declared, wrong state) does not abort the others.
func DeclareTrips(ctx context.Context, tripIds []int) (*BatchResult, error) {
	result := &BatchResult{Errors: make(map[int]string)}
	for _, tripId := range tripIds {
		trip, err := DeclareTrip(ctx, tripId)
		if err != nil {
			result.Errors[tripId] = err.Error()
			continue
		}
		result.Trips = append(result.Trips, trip)
	}
	return result, nil
}

// ReleaseTrips releases a set of trips with per-item failure isolation.
func ReleaseTrips(ctx context.Context, tripIds []int) (*BatchResult, error) {
	result := &BatchResult{Errors: make(map[int]string)}
	for _, tripId := range tripIds {
		trip, err := ReleaseTrip(ctx, tripId)
		if err != nil {
			result.Errors[tripId] = err.Error()
			continue
		}
		result.Trips = append(result.Trips, trip)
	}
	return result, nil
}
