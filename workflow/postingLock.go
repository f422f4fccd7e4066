package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireTripPostingLock serializes mutations per trip across instances using
// MySQL advisory locks. Concurrent transitions and shortage reports on the
// same trip would otherwise interleave between the read and the state write.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the mutating transaction.
func AcquireTripPostingLock(tx *gorm.DB, tripId int) error {
	lockName := fmt.Sprintf("trip:%d", tripId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for trip_id=%d", tripId)
	}
	return nil
}

func ReleaseTripPostingLock(tx *gorm.DB, tripId int) {
	lockName := fmt.Sprintf("trip:%d", tripId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
