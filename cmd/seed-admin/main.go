// seed-admin creates the bootstrap Admin user if it does not exist yet.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	ADMIN_USERNAME=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
)

func main() {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "fleetAdmin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ctx := context.Background()

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Printf("admin user %q already exists\n", username)
		return
	}

	user, err := models.CreateUser(ctx, &models.NewUser{
		Username: username,
		FullName: "Fleet Admin",
		Password: password,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create admin failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin user %q created (id=%d)\n", user.Username, user.ID)
}
