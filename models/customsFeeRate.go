package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
)

// CustomsFeeRate is the per-liter customs fee for one product category, plus
// the fixed stamp fee collected alongside it.
type CustomsFeeRate struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Category     ProductCategory `gorm:"type:enum('Gasoline','Diesel','Kerosene','Lubricant');uniqueIndex;not null" json:"category"`
	RatePerLiter decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate_per_liter"`
	StampFee     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stamp_fee"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

const customsFeeRateCacheKey = "customsFeeRates"

// GetCustomsFeeRate looks up the fee rate for a product category, redis or db.
// The cache refresh is serialized with a redis lock to avoid a stampede when
// many trips declare at once; without redis the db is hit directly.
func GetCustomsFeeRate(ctx context.Context, category ProductCategory) (*CustomsFeeRate, error) {
	rates := make(map[ProductCategory]CustomsFeeRate)
	exists, err := config.GetRedisObject(customsFeeRateCacheKey, &rates)
	if err != nil {
		return nil, err
	}
	if !exists {
		if locker := config.GetRedisLock(); locker != nil {
			lock, lockErr := locker.Obtain(ctx, customsFeeRateCacheKey+":refresh", 5*time.Second, nil)
			if lockErr == nil {
				defer lock.Release(ctx)
			} else if lockErr != redislock.ErrNotObtained {
				return nil, lockErr
			}
			// ErrNotObtained: someone else is refreshing; fall through and
			// read from db for this call.
		}

		db := config.GetDB()
		var all []CustomsFeeRate
		if err := db.WithContext(ctx).Find(&all).Error; err != nil {
			return nil, err
		}
		for _, rate := range all {
			rates[rate.Category] = rate
		}
		if err := config.SetRedisObject(customsFeeRateCacheKey, &rates, time.Hour); err != nil {
			return nil, err
		}
	}

	rate, ok := rates[category]
	if !ok {
		return nil, errors.New("no customs fee rate configured for product category")
	}
	return &rate, nil
}

// UpsertCustomsFeeRate sets the rate for a category and drops the cache.
func UpsertCustomsFeeRate(ctx context.Context, category ProductCategory, ratePerLiter decimal.Decimal, stampFee decimal.Decimal) (*CustomsFeeRate, error) {
	if ratePerLiter.IsNegative() || stampFee.IsNegative() {
		return nil, errors.New("customs fees cannot be negative")
	}

	db := config.GetDB()
	var rate CustomsFeeRate
	err := db.WithContext(ctx).Where("category = ?", category).First(&rate).Error
	if err == nil {
		err = db.WithContext(ctx).Model(&rate).Updates(map[string]interface{}{
			"RatePerLiter": ratePerLiter,
			"StampFee":     stampFee,
		}).Error
		if err != nil {
			return nil, err
		}
		rate.RatePerLiter = ratePerLiter
		rate.StampFee = stampFee
	} else {
		rate = CustomsFeeRate{
			Category:     category,
			RatePerLiter: ratePerLiter,
			StampFee:     stampFee,
		}
		if err := db.WithContext(ctx).Create(&rate).Error; err != nil {
			return nil, err
		}
	}

	if err := config.RemoveRedisKey(customsFeeRateCacheKey); err != nil {
		return nil, err
	}
	return &rate, nil
}
