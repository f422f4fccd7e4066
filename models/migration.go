package models

import (
	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Truck{},
		&Client{},
		&Product{},
		&Depot{},
		&Stock{},
		&StockMovement{},
		&Trip{},
		&TripCheckpoint{},
		&ClientAllocation{},
		&Shortage{},
		&PaymentObligation{},
		&CustomsFeeRate{},
		&AlertRecord{},
	)
	utils.ErrorPanic(err)
}
