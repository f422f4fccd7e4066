package workflow

import (
	"errors"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock quantity")

// TransferStock debits fromStock and credits toStock atomically, writing one
// OUT and one IN movement. Callers must have fetched both rows under FOR
// UPDATE inside tx; the insufficient-quantity check is a true precondition
// only while those locks are held. Depot capacity-used counters move
// symmetrically with the quantities.
func TransferStock(tx *gorm.DB, logger *logrus.Logger, fromStock *models.Stock, toStock *models.Stock, qty decimal.Decimal, reason string) error {
	if !qty.IsPositive() {
		return errors.New("transfer quantity must be positive")
	}
	if fromStock.Qty.LessThan(qty) {
		return ErrInsufficientStock
	}

	if err := debitStock(tx, fromStock, qty, models.MovementTypeOut, reason); err != nil {
		config.LogError(logger, "stockProcessing.go", "TransferStock", "DebitFromStock", fromStock.ID, err)
		return err
	}
	if err := creditStock(tx, toStock, qty, models.MovementTypeIn, reason); err != nil {
		config.LogError(logger, "stockProcessing.go", "TransferStock", "CreditToStock", toStock.ID, err)
		return err
	}
	return nil
}

// DebitStock removes quantity from a balance with a single OUT movement.
// Used for the tanker-pool debit when a delivery is recorded.
func DebitStock(tx *gorm.DB, logger *logrus.Logger, stock *models.Stock, qty decimal.Decimal, reason string) error {
	if !qty.IsPositive() {
		return errors.New("debit quantity must be positive")
	}
	if stock.Qty.LessThan(qty) {
		return ErrInsufficientStock
	}
	if err := debitStock(tx, stock, qty, models.MovementTypeOut, reason); err != nil {
		config.LogError(logger, "stockProcessing.go", "DebitStock", "Debit", stock.ID, err)
		return err
	}
	return nil
}

// CreditStock adds quantity to a balance with a single IN movement.
func CreditStock(tx *gorm.DB, logger *logrus.Logger, stock *models.Stock, qty decimal.Decimal, reason string) error {
	if !qty.IsPositive() {
		return errors.New("credit quantity must be positive")
	}
	if err := creditStock(tx, stock, qty, models.MovementTypeIn, reason); err != nil {
		config.LogError(logger, "stockProcessing.go", "CreditStock", "Credit", stock.ID, err)
		return err
	}
	return nil
}

func debitStock(tx *gorm.DB, stock *models.Stock, qty decimal.Decimal, movementType models.MovementType, reason string) error {
	newQty := stock.Qty.Sub(qty)
	if err := tx.Model(&models.Stock{}).Where("id = ?", stock.ID).Update("Qty", newQty).Error; err != nil {
		return err
	}
	stock.Qty = newQty

	movement := models.StockMovement{
		StockId:     stock.ID,
		Type:        movementType,
		Qty:         qty.Neg(),
		Description: reason,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return err
	}

	if stock.DepotId != nil {
		return models.AdjustDepotCapacityUsed(tx, *stock.DepotId, qty.Neg())
	}
	return nil
}

func creditStock(tx *gorm.DB, stock *models.Stock, qty decimal.Decimal, movementType models.MovementType, reason string) error {
	newQty := stock.Qty.Add(qty)
	if err := tx.Model(&models.Stock{}).Where("id = ?", stock.ID).Update("Qty", newQty).Error; err != nil {
		return err
	}
	stock.Qty = newQty

	movement := models.StockMovement{
		StockId:     stock.ID,
		Type:        movementType,
		Qty:         qty,
		Description: reason,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return err
	}

	if stock.DepotId != nil {
		return models.AdjustDepotCapacityUsed(tx, *stock.DepotId, qty)
	}
	return nil
}
