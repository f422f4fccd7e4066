package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TransitionInput carries the optional payloads of a transition request:
// new client allocations and shortage reports keyed by allocation.
type TransitionInput struct {
	Allocations []models.NewClientAllocation `json:"allocations"`
	Shortages   []ShortageUpdate             `json:"shortages"`
}

type ShortageUpdate struct {
	AllocationId int             `json:"allocation_id"`
	Qty          decimal.Decimal `json:"qty"`
}

// completionTolerance absorbs metering rounding when comparing the delivered
// total against the trip's nominal quantity.
var completionTolerance = decimal.NewFromFloat(0.01)

// EvaluateCompletion decides the terminal state of an unloading trip: fully
// UNLOADED iff every allocation is delivered and the delivered total (quantity
// minus shortage) matches the nominal quantity within tolerance. A trip with
// no allocations cannot be evaluated and the transition is rejected.
func EvaluateCompletion(nominalQty decimal.Decimal, allocations []models.ClientAllocation) (models.TripState, error) {
	if len(allocations) == 0 {
		return "", errors.New("cannot evaluate unloading without client allocations")
	}

	delivered := decimal.Zero
	for _, allocation := range allocations {
		if allocation.DeliveryStatus != models.DeliveryStatusDelivered {
			return models.TripStatePartiallyUnloaded, nil
		}
		delivered = delivered.Add(allocation.DeliveredQty())
	}

	if delivered.Sub(nominalQty).Abs().LessThanOrEqual(completionTolerance) {
		return models.TripStateUnloaded, nil
	}
	return models.TripStatePartiallyUnloaded, nil
}

// RequestTransition moves a trip toward targetState, applying any allocation
// and shortage payloads on the way. The actual resulting state may differ from
// the request (transient states auto-advance, unloading is inferred from the
// allocations). All side effects commit or roll back with the state write.
func RequestTransition(ctx context.Context, tripId int, targetState string, input *TransitionInput) (*models.Trip, error) {
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

	state, known := models.ParseTripState(targetState)
	if !known {
		// Compatibility pass-through: unknown statuses from legacy clients
		// degrade to LOADING instead of failing.
		logger.WithFields(logrus.Fields{
			"module":  "tripWorkflow.go",
			"trip_id": tripId,
			"status":  targetState,
		}).Warn("unknown target state; falling back to LOADING")
	}

	if input == nil {
		input = &TransitionInput{}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Enforce strict per-trip ordering across instances.
		if err := AcquireTripPostingLock(tx.WithContext(ctx), tripId); err != nil {
			return err
		}
		defer ReleaseTripPostingLock(tx.WithContext(ctx), tripId)

		// Re-read inside the lock: a concurrent transition may have landed
		// between the authorization read and here.
		lockedTrip, err := utils.FetchModelTx[models.Trip](tx.WithContext(ctx), tripId, "Checkpoints", "Allocations")
		if err != nil {
			return err
		}
		trip = lockedTrip

		// Allocation payload applies before any delivery/unloading logic.
		for _, allocationInput := range input.Allocations {
			if _, _, err := models.RecordAllocation(ctx, tx.WithContext(ctx), trip, allocationInput); err != nil {
				return err
			}
		}

		return applyTransition(ctx, tx.WithContext(ctx), logger, trip, state, input.Shortages, caller.ID)
	})
	if err != nil {
		return nil, err
	}

	return models.GetTrip(ctx, tripId)
}

func applyTransition(ctx context.Context, tx *gorm.DB, logger *logrus.Logger, trip *models.Trip, state models.TripState, shortages []ShortageUpdate, callerId int) error {
	now := time.Now().UTC()

	switch state {
	case models.TripStateLoading:
		// Loading is pre-validated at creation; a repeated request only
		// refreshes the checkpoint timestamp.
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointLoading); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateLoading)

	case models.TripStateLoaded:
		// Transient: loading completes, stock moves to the tanker pool and
		// the trip departs in the same operation. The state guard keeps a
		// repeated request from moving the stock twice.
		if trip.State != models.TripStateLoading {
			return errors.New("trip has already completed loading")
		}
		if err := loadTripStock(tx, logger, trip); err != nil {
			return err
		}
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("DepartedAt", now).Error; err != nil {
			return err
		}
		trip.DepartedAt = &now
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointLoaded); err != nil {
			return err
		}
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointDeparted); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateDeparted)

	case models.TripStateDeparted:
		if trip.DepartedAt == nil {
			if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("DepartedAt", now).Error; err != nil {
				return err
			}
			trip.DepartedAt = &now
		}
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointDeparted); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateDeparted)

	case models.TripStateArrived:
		// Transient: arrival rolls straight into customs.
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("ArrivedAt", now).Error; err != nil {
			return err
		}
		trip.ArrivedAt = &now
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointArrived); err != nil {
			return err
		}
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointCustoms); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateCustoms)

	case models.TripStateCustoms:
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointCustoms); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateCustoms)

	case models.TripStateReceived:
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointReceived); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateReceived)

	case models.TripStateDelivered:
		// Idempotency guard: a second delivery signal does not re-deliver,
		// it pushes the trip into partial unloading instead.
		if cp := trip.Checkpoint(models.CheckpointDelivered); cp != nil && cp.IsValidated() {
			return setTripState(tx, trip, models.TripStatePartiallyUnloaded)
		}
		if err := models.ValidateCheckpoint(tx, trip, models.CheckpointDelivered); err != nil {
			return err
		}
		return setTripState(tx, trip, models.TripStateDelivered)

	case models.TripStateUnloaded, models.TripStatePartiallyUnloaded:
		for _, update := range shortages {
			allocation := findAllocation(trip, update.AllocationId)
			if allocation == nil {
				return utils.ErrorRecordNotFound
			}
			if err := recordShortage(ctx, tx, logger, trip, allocation, update.Qty, callerId); err != nil {
				return err
			}
		}

		// The caller's requested terminal state is advisory; the allocations
		// decide what the trip actually reached.
		actual, err := EvaluateCompletion(trip.NominalQty, trip.Allocations)
		if err != nil {
			return err
		}
		if actual == models.TripStateUnloaded {
			if err := models.ValidateCheckpoint(tx, trip, models.CheckpointUnloaded); err != nil {
				return err
			}
		}
		return setTripState(tx, trip, actual)
	}

	return errors.New("unhandled trip state")
}

// loadTripStock moves the trip's nominal quantity from the origin depot to the
// per-product tanker pool. Insufficient depot stock fails the whole
// transition.
func loadTripStock(tx *gorm.DB, logger *logrus.Logger, trip *models.Trip) error {
	if trip.DepotId == nil {
		return errors.New("trip has no origin depot")
	}

	depotStock, err := models.GetDepotStock(tx, *trip.DepotId, trip.ProductId)
	if err != nil {
		return err
	}
	tankerStock, err := models.GetOrCreateTankerStock(tx, trip.ProductId)
	if err != nil {
		return err
	}

	return TransferStock(tx, logger, depotStock, tankerStock, trip.NominalQty, "Trip loading")
}

func setTripState(tx *gorm.DB, trip *models.Trip, state models.TripState) error {
	if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("State", state).Error; err != nil {
		return err
	}
	trip.State = state
	return models.SyncTruckStatus(tx, trip)
}

func findAllocation(trip *models.Trip, allocationId int) *models.ClientAllocation {
	for i := range trip.Allocations {
		if trip.Allocations[i].ID == allocationId {
			return &trip.Allocations[i]
		}
	}
	return nil
}
