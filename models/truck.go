package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Truck struct {
	ID           int             `gorm:"primary_key" json:"id"`
	PlateNumber  string          `gorm:"size:20;uniqueIndex;not null" json:"plate_number"`
	Model        string          `gorm:"size:100" json:"model"`
	CapacityQty  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"capacity_qty"`
	CapacityUnit string          `gorm:"size:10;default:'L'" json:"capacity_unit"`
	Status       TruckStatus     `gorm:"type:enum('Available','EnRoute','Maintenance','OutOfService');default:'Available'" json:"status"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTruck struct {
	PlateNumber string          `json:"plate_number" validate:"required"`
	Model       string          `json:"model"`
	CapacityQty decimal.Decimal `json:"capacity_qty"`
}

func CreateTruck(ctx context.Context, input *NewTruck) (*Truck, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if !input.CapacityQty.IsPositive() {
		return nil, errors.New("truck capacity must be positive")
	}

	truck := Truck{
		PlateNumber: input.PlateNumber,
		Model:       input.Model,
		CapacityQty: input.CapacityQty,
		Status:      TruckStatusAvailable,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&truck).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, errors.New("duplicate plate number")
		}
		return nil, err
	}
	return &truck, nil
}

func GetTruck(ctx context.Context, id int) (*Truck, error) {
	return utils.FetchModel[Truck](ctx, id)
}

// DeriveTruckStatus computes the truck availability implied by a trip after a
// transition. Availability is derived, never stored as independent truth:
//   - LOADING..CUSTOMS: the truck is on the road
//   - RECEIVED/DELIVERED: available only once every allocation is delivered
//     (or the trip has none)
//   - UNLOADED: available only when the Unloaded checkpoint is validated AND
//     every allocation is delivered
//   - PARTIALLY_UNLOADED: still on the road
//
// A truck flagged Maintenance or OutOfService is never overridden.
func DeriveTruckStatus(current TruckStatus, state TripState, allocations []ClientAllocation, unloadedValidated bool) TruckStatus {
	if current == TruckStatusMaintenance || current == TruckStatusOutOfService {
		return current
	}

	allDelivered := true
	for _, allocation := range allocations {
		if allocation.DeliveryStatus != DeliveryStatusDelivered {
			allDelivered = false
			break
		}
	}

	switch state {
	case TripStateLoading, TripStateLoaded, TripStateDeparted, TripStateArrived, TripStateCustoms:
		return TruckStatusEnRoute
	case TripStateReceived, TripStateDelivered:
		if allDelivered {
			return TruckStatusAvailable
		}
		return TruckStatusEnRoute
	case TripStateUnloaded:
		if unloadedValidated && allDelivered {
			return TruckStatusAvailable
		}
		return TruckStatusEnRoute
	case TripStatePartiallyUnloaded:
		return TruckStatusEnRoute
	}
	return current
}

// SyncTruckStatus persists the derived availability for the trip's truck.
func SyncTruckStatus(tx *gorm.DB, trip *Trip) error {
	var truck Truck
	if err := tx.First(&truck, trip.TruckId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	unloadedValidated := false
	for _, cp := range trip.Checkpoints {
		if cp.Name == CheckpointUnloaded && cp.Validated != nil && *cp.Validated {
			unloadedValidated = true
			break
		}
	}

	derived := DeriveTruckStatus(truck.Status, trip.State, trip.Allocations, unloadedValidated)
	if derived == truck.Status {
		return nil
	}
	return tx.Model(&truck).Update("Status", derived).Error
}
