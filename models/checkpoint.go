package models

import (
	"errors"
	"time"

	"bitbucket.org/transfuel/fleet_backend/utils"
	"gorm.io/gorm"
)

// TripCheckpoint is one of the 8 fixed milestones created with every trip.
type TripCheckpoint struct {
	ID        int            `gorm:"primary_key" json:"id"`
	TripId    int            `gorm:"index;not null" json:"trip_id"`
	Name      CheckpointName `gorm:"size:20;not null" json:"name"`
	Validated *bool          `gorm:"not null;default:false" json:"validated"`
	TouchedAt time.Time      `gorm:"not null" json:"touched_at"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate marks the checkpoint validated in memory. The flag is monotonic:
// re-validating refreshes the timestamp only, it never flips back to false.
func (cp *TripCheckpoint) Validate(now time.Time) {
	cp.Validated = utils.NewTrue()
	cp.TouchedAt = now
}

func (cp *TripCheckpoint) IsValidated() bool {
	return cp.Validated != nil && *cp.Validated
}

// defaultCheckpoints builds the fixed milestone set for a new trip. "Loading"
// starts pre-validated.
func defaultCheckpoints(now time.Time) []TripCheckpoint {
	checkpoints := make([]TripCheckpoint, 0, len(CheckpointNames))
	for _, name := range CheckpointNames {
		cp := TripCheckpoint{
			Name:      name,
			Validated: utils.NewFalse(),
			TouchedAt: now,
		}
		if name == CheckpointLoading {
			cp.Validated = utils.NewTrue()
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints
}

// Checkpoint returns the trip's milestone by name.
func (trip *Trip) Checkpoint(name CheckpointName) *TripCheckpoint {
	for i := range trip.Checkpoints {
		if trip.Checkpoints[i].Name == name {
			return &trip.Checkpoints[i]
		}
	}
	return nil
}

// ValidateCheckpoint persists a checkpoint validation inside the caller's
// transaction. A second validation of the same milestone is tolerated and
// refreshes the timestamp.
func ValidateCheckpoint(tx *gorm.DB, trip *Trip, name CheckpointName) error {
	cp := trip.Checkpoint(name)
	if cp == nil {
		return errors.New("checkpoint not found")
	}
	cp.Validate(time.Now().UTC())
	return tx.Model(&TripCheckpoint{}).Where("id = ?", cp.ID).Updates(map[string]interface{}{
		"Validated": true,
		"TouchedAt": cp.TouchedAt,
	}).Error
}
