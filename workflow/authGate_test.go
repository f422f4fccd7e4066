package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/transfuel/fleet_backend/models"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

func TestAuthorize_PrivilegedRolesBypass(t *testing.T) {
	trip := &models.Trip{ResponsibleId: 7}
	for _, role := range []models.RoleName{models.RoleAdmin, models.RoleManager} {
		caller := &models.User{ID: 99, Role: role}
		if err := Authorize(trip, caller); err != nil {
			t.Fatalf("role %q: unexpected rejection: %v", role, err)
		}
	}
}

func TestAuthorize_ResponsiblePartyOnly(t *testing.T) {
	trip := &models.Trip{ResponsibleId: 7}

	if err := Authorize(trip, &models.User{ID: 7, Role: models.RoleDriver}); err != nil {
		t.Fatalf("responsible party rejected: %v", err)
	}
	if err := Authorize(trip, &models.User{ID: 8, Role: models.RoleDriver}); !errors.Is(err, utils.ErrorNotAuthorized) {
		t.Fatalf("other driver: got %v, want ErrorNotAuthorized", err)
	}
}

func TestAuthorize_NoResponsiblePartyRejectsEveryoneUnprivileged(t *testing.T) {
	trip := &models.Trip{ResponsibleId: 0}
	if err := Authorize(trip, &models.User{ID: 0, Role: models.RoleDriver}); !errors.Is(err, utils.ErrorNotAuthorized) {
		t.Fatalf("got %v, want ErrorNotAuthorized", err)
	}
	if err := Authorize(trip, nil); !errors.Is(err, utils.ErrorNotAuthorized) {
		t.Fatalf("nil caller: got %v, want ErrorNotAuthorized", err)
	}
}
