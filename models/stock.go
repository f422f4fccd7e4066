package models

import (
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stock is one quantity-on-hand balance. A row is keyed either by
// (depot, product) for physical depot stock, or by (tanker flag, product) for
// the virtual in-transit pool. Exactly one tanker row exists per product,
// shared by every trip carrying that product.
type Stock struct {
	ID        int             `gorm:"primary_key" json:"id"`
	DepotId   *int            `gorm:"index" json:"depot_id"`
	IsTanker  *bool           `gorm:"not null;default:false;index" json:"is_tanker"`
	ProductId int             `gorm:"index;not null" json:"product_id"`
	Qty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Unit      string          `gorm:"size:10;default:'L'" json:"unit"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockMovement is the append-only ledger entry behind every quantity change.
// Rows are never updated or deleted once written.
type StockMovement struct {
	ID          int             `gorm:"primary_key" json:"id"`
	StockId     int             `gorm:"index;not null" json:"stock_id"`
	Type        MovementType    `gorm:"type:enum('IN','OUT','TRANSFER','ADJUSTMENT');not null" json:"type"`
	Qty         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// GetDepotStock fetches the (depot, product) balance under a row lock so the
// insufficient-quantity check holds until the surrounding transaction commits.
func GetDepotStock(tx *gorm.DB, depotId int, productId int) (*Stock, error) {
	var stock Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("depot_id = ? AND product_id = ?", depotId, productId).
		First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// GetOrCreateTankerStock fetches the per-product tanker-pool balance, creating
// the row lazily on first use. The fetched row is locked for update.
func GetOrCreateTankerStock(tx *gorm.DB, productId int) (*Stock, error) {
	var stock Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_tanker = 1 AND product_id = ?", productId).
		First(&stock).Error
	if err == nil {
		return &stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	stock = Stock{
		IsTanker:  utils.NewTrue(),
		ProductId: productId,
		Qty:       decimal.Zero,
	}
	if err := tx.Create(&stock).Error; err != nil {
		// Lost a create race: another transaction inserted the pool row first.
		if utils.IsDuplicateKeyErr(err) {
			return GetOrCreateTankerStock(tx, productId)
		}
		return nil, err
	}
	return &stock, nil
}
