package models

import (
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shortage records the undelivered part of one client's allocation. At most
// one row exists per (trip, client) pair; later reports update it in place.
type Shortage struct {
	ID       int             `gorm:"primary_key" json:"id"`
	TripId   int             `gorm:"index:idx_shortage_trip_client,unique;not null" json:"trip_id"`
	ClientId int             `gorm:"index:idx_shortage_trip_client,unique;not null" json:"client_id"`
	Qty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty"`
	// Amount is qty x the allocation's agreed sale price (0 while unpriced).
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	AuthorId  int             `gorm:"index" json:"author_id"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ShortageAmount computes the monetary value of a shortage: quantity times the
// allocation's agreed price, zero when no price has been agreed yet.
func ShortageAmount(qty decimal.Decimal, agreedPrice *decimal.Decimal) decimal.Decimal {
	return qty.Mul(utils.DecimalOrZero(agreedPrice))
}

// UpsertShortage writes the shortage for (trip, client). firstWrite reports
// whether a new record was created, which is the trigger for the one-time
// tanker-pool debit. Zero quantity is valid and encodes "delivered in full".
func UpsertShortage(tx *gorm.DB, tripId int, clientId int, qty decimal.Decimal, amount decimal.Decimal, authorId int) (*Shortage, bool, error) {
	if qty.IsNegative() {
		return nil, false, errors.New("shortage quantity cannot be negative")
	}

	var shortage Shortage
	err := tx.Where("trip_id = ? AND client_id = ?", tripId, clientId).First(&shortage).Error
	if err == nil {
		err = tx.Model(&shortage).Updates(map[string]interface{}{
			"Qty":      qty,
			"Amount":   amount,
			"AuthorId": authorId,
		}).Error
		if err != nil {
			return nil, false, err
		}
		shortage.Qty = qty
		shortage.Amount = amount
		shortage.AuthorId = authorId
		return &shortage, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	shortage = Shortage{
		TripId:   tripId,
		ClientId: clientId,
		Qty:      qty,
		Amount:   amount,
		AuthorId: authorId,
	}
	if err := tx.Create(&shortage).Error; err != nil {
		// Unique (trip, client) index: a concurrent first report wins and this
		// one becomes a correction.
		if utils.IsDuplicateKeyErr(err) {
			return UpsertShortage(tx, tripId, clientId, qty, amount, authorId)
		}
		return nil, false, err
	}
	return &shortage, true, nil
}

// TotalShortageAmount sums the monetary shortage over all records of a trip.
func TotalShortageAmount(tx *gorm.DB, tripId int) (decimal.Decimal, error) {
	var shortages []Shortage
	if err := tx.Where("trip_id = ?", tripId).Find(&shortages).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range shortages {
		total = total.Add(s.Amount)
	}
	return total, nil
}
