package models

import (
	"context"
	"testing"
)

func TestCreateClient_RejectsInvalidPhone(t *testing.T) {
	// Phone validation runs before any database access, so a bad number must
	// fail fast.
	_, err := CreateClient(context.Background(), &NewClient{
		Name:  "Alpha Fuels",
		Phone: "123",
	})
	if err == nil {
		t.Fatalf("invalid phone number accepted")
	}
}
