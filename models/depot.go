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

type Depot struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	City        string          `gorm:"size:100" json:"city"`
	CapacityQty decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"capacity_qty"`
	// CapacityUsed tracks the occupied share of the depot. It moves
	// symmetrically with depot-affecting ledger moves and never goes negative.
	CapacityUsed decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"capacity_used"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDepot struct {
	Name        string          `json:"name" validate:"required"`
	City        string          `json:"city"`
	CapacityQty decimal.Decimal `json:"capacity_qty"`
}

func CreateDepot(ctx context.Context, input *NewDepot) (*Depot, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	depot := Depot{
		Name:        input.Name,
		City:        input.City,
		CapacityQty: input.CapacityQty,
		IsActive:    utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&depot).Error; err != nil {
		return nil, err
	}
	return &depot, nil
}

func GetDepot(ctx context.Context, id int) (*Depot, error) {
	return utils.FetchModel[Depot](ctx, id)
}

// AdjustDepotCapacityUsed applies a signed delta to the depot's capacity-used
// counter, clamped at zero. Must run inside the caller's transaction.
func AdjustDepotCapacityUsed(tx *gorm.DB, depotId int, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	var depot Depot
	if err := tx.First(&depot, depotId).Error; err != nil {
		return errors.New("depot not found")
	}
	used := utils.MaxDecimalZero(depot.CapacityUsed.Add(delta))
	return tx.Model(&depot).Update("CapacityUsed", used).Error
}
