package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
)

// Trip is the aggregate root: one truck journey carrying one product from a
// depot to one or more clients. Checkpoints and allocations are owned child
// rows, saved in the order trip -> checkpoints -> allocations -> movements.
type Trip struct {
	ID            int  `gorm:"primary_key" json:"id"`
	TruckId       int  `gorm:"index;not null" json:"truck_id"`
	ProductId     int  `gorm:"index;not null" json:"product_id"`
	DepotId       *int `gorm:"index" json:"depot_id"`
	RouteId       int  `gorm:"index" json:"route_id"`
	ResponsibleId int  `gorm:"index;not null" json:"responsible_id"`
	// NominalQty is the truck's capacity, frozen at creation.
	NominalQty    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"nominal_qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TransportCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"transport_cost"`
	State         TripState       `gorm:"size:30;not null;default:'LOADING';index" json:"state"`
	Declared      *bool           `gorm:"not null;default:false" json:"declared"`
	Released      *bool           `gorm:"not null;default:false" json:"released"`
	// PassedUndeclared marks a trip that went through customs without filing
	// a declaration.
	PassedUndeclared *bool `gorm:"not null;default:false" json:"passed_undeclared"`
	// Cession trips are internal transfers: no transport cost, no payment.
	Cession     *bool              `gorm:"not null;default:false" json:"cession"`
	DepartedAt  *time.Time         `json:"departed_at"`
	ArrivedAt   *time.Time         `json:"arrived_at"`
	Checkpoints []TripCheckpoint   `gorm:"foreignKey:TripId" json:"checkpoints"`
	Allocations []ClientAllocation `gorm:"foreignKey:TripId" json:"allocations"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTrip struct {
	TruckId       int                   `json:"truck_id" validate:"required"`
	ProductId     int                   `json:"product_id" validate:"required"`
	DepotId       int                   `json:"depot_id" validate:"required"`
	RouteId       int                   `json:"route_id"`
	ResponsibleId int                   `json:"responsible_id" validate:"required"`
	UnitPrice     decimal.Decimal       `json:"unit_price"`
	Cession       bool                  `json:"cession"`
	Allocations   []NewClientAllocation `json:"allocations"`
}

func (trip *Trip) IsCession() bool {
	return trip.Cession != nil && *trip.Cession
}

func (trip *Trip) IsDeclared() bool {
	return trip.Declared != nil && *trip.Declared
}

// IsArchived: a trip is archived once released from customs, whether or not a
// declaration was filed.
func (trip *Trip) IsArchived() bool {
	return trip.Released != nil && *trip.Released
}

func (input *NewTrip) validate(ctx context.Context) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Truck](ctx, input.TruckId); err != nil {
		return errors.New("truck not found")
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return errors.New("product not found")
	}
	if err := utils.ValidateResourceId[Depot](ctx, input.DepotId); err != nil {
		return errors.New("depot not found")
	}
	if err := utils.ValidateResourceId[User](ctx, input.ResponsibleId); err != nil {
		return errors.New("responsible party not found")
	}
	if input.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	// Cession trips carry no transport price and must name at least one
	// receiving client up front.
	if input.Cession && len(input.Allocations) == 0 {
		return errors.New("a cession trip requires a client allocation at creation")
	}
	return nil
}

// CreateTrip builds the aggregate atomically: the trip row, its 8 checkpoints
// (Loading pre-validated), any initial allocations, and the pending
// transport-cost obligation (skipped for cession trips).
func CreateTrip(ctx context.Context, input *NewTrip) (*Trip, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	truck, err := GetTruck(ctx, input.TruckId)
	if err != nil {
		return nil, errors.New("truck not found")
	}

	unitPrice := input.UnitPrice
	if input.Cession {
		unitPrice = decimal.Zero
	}

	now := time.Now().UTC()
	depotId := input.DepotId
	trip := Trip{
		TruckId:          input.TruckId,
		ProductId:        input.ProductId,
		DepotId:          &depotId,
		RouteId:          input.RouteId,
		ResponsibleId:    input.ResponsibleId,
		NominalQty:       truck.CapacityQty,
		UnitPrice:        unitPrice,
		TransportCost:    unitPrice.Mul(truck.CapacityQty),
		State:            TripStateLoading,
		Declared:         utils.NewFalse(),
		Released:         utils.NewFalse(),
		PassedUndeclared: utils.NewFalse(),
		Cession:          &input.Cession,
		Checkpoints:      defaultCheckpoints(now),
	}

	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&trip).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, allocationInput := range input.Allocations {
		if _, _, err := RecordAllocation(ctx, tx.WithContext(ctx), &trip, allocationInput); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if !input.Cession && trip.TransportCost.IsPositive() {
		if _, err := CreatePendingObligation(tx.WithContext(ctx), trip.ID, ObligationTypeTransportCost, trip.TransportCost, "Transport cost"); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &trip, nil
}

func GetTrip(ctx context.Context, id int) (*Trip, error) {
	return utils.FetchModel[Trip](ctx, id, "Checkpoints", "Allocations")
}

func ListTrips(ctx context.Context, state *TripState) ([]*Trip, error) {
	db := config.GetDB()
	var results []*Trip

	dbCtx := db.WithContext(ctx).Preload("Checkpoints").Preload("Allocations")
	if state != nil {
		dbCtx = dbCtx.Where("state = ?", *state)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteTrip removes the aggregate. Only allowed before loading completed:
// once stock has moved to the tanker pool the trip must run its course.
func DeleteTrip(ctx context.Context, id int) (*Trip, error) {
	trip, err := GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.State != TripStateLoading {
		return nil, errors.New("only a trip still loading can be deleted")
	}
	for _, allocation := range trip.Allocations {
		if allocation.DeliveryStatus == DeliveryStatusDelivered {
			return nil, errors.New("trip has delivered allocations")
		}
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Where("trip_id = ?", id).Delete(&TripCheckpoint{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("trip_id = ?", id).Delete(&ClientAllocation{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&PaymentObligation{}).
		Where("trip_id = ? AND status = ?", id, ObligationStatusPending).
		Update("Status", ObligationStatusCancelled).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&Trip{}, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return trip, nil
}
