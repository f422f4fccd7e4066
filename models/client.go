package models

import (
	"context"
	"errors"
	"os"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

// clientPhoneRegion is the default region for parsing client phone numbers.
func clientPhoneRegion() string {
	if v := os.Getenv("CLIENT_PHONE_REGION"); v != "" {
		return v
	}
	return "FR"
}

type Client struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, clientPhoneRegion()); err != nil {
			return nil, errors.New("invalid phone number")
		}
	}

	client := Client{
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	return utils.FetchModel[Client](ctx, id)
}

func DeleteClient(ctx context.Context, id int) (*Client, error) {
	client, err := utils.FetchModel[Client](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&ClientAllocation{}).
		Where("client_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("client has trip allocations")
	}

	if err := db.WithContext(ctx).Delete(&client).Error; err != nil {
		return nil, err
	}
	return client, nil
}
