package workflow

import (
	"context"

	"bitbucket.org/transfuel/fleet_backend/models"
	"bitbucket.org/transfuel/fleet_backend/utils"
)

// Authorize gates every state-mutating trip operation. Privileged roles pass
// unconditionally; everyone else must be the trip's assigned responsible
// party. A trip with no responsible party rejects all non-privileged callers.
func Authorize(trip *models.Trip, caller *models.User) error {
	if caller == nil {
		return utils.ErrorNotAuthorized
	}
	if caller.IsPrivileged() {
		return nil
	}
	if trip.ResponsibleId == 0 || trip.ResponsibleId != caller.ID {
		return utils.ErrorNotAuthorized
	}
	return nil
}

// AuthorizeFromContext resolves the caller placed in ctx and runs the gate.
func AuthorizeFromContext(ctx context.Context, trip *models.Trip) (*models.User, error) {
	caller, err := models.GetCallerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := Authorize(trip, caller); err != nil {
		return nil, err
	}
	return caller, nil
}
