package models

import (
	"context"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

type Product struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Category  ProductCategory `gorm:"type:enum('Gasoline','Diesel','Kerosene','Lubricant');default:'Gasoline'" json:"category"`
	Unit      string          `gorm:"size:10;default:'L'" json:"unit"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name     string          `json:"name" validate:"required"`
	Category ProductCategory `json:"category"`
	Unit     string          `json:"unit"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = ProductCategoryGasoline
	}
	unit := input.Unit
	if unit == "" {
		unit = "L"
	}

	product := Product{
		Name:     input.Name,
		Category: category,
		Unit:     unit,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}
