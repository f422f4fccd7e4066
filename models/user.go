package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	FullName     string    `gorm:"size:100" json:"full_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         RoleName  `gorm:"type:enum('Admin','Manager','Dispatcher','Driver');default:'Driver'" json:"role"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" validate:"required"`
	FullName string   `json:"full_name"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     RoleName `json:"role"`
}

// IsPrivileged reports whether the user's role bypasses the responsible-party
// restriction on trip mutations.
func (u *User) IsPrivileged() bool {
	for _, role := range PrivilegedRoles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, errors.New("username is required")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = RoleDriver
	}

	user := User{
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, errors.New("duplicate username")
		}
		return nil, err
	}
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

// GetCallerFromContext resolves the caller identity placed in ctx by the
// transport layer into a user record. Identity is always explicit; there is
// no ambient security context.
func GetCallerFromContext(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorNotAuthorized
	}
	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, utils.ErrorNotAuthorized
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, utils.ErrorNotAuthorized
	}
	return user, nil
}
