package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/transfuel/fleet_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertRecord is a transactional-outbox row: it is written inside the mutating
// transaction and published to Pub/Sub asynchronously by the alert dispatcher
// after commit. Alerts are fire-and-forget for the caller.
type AlertRecord struct {
	ID            int                `gorm:"primary_key" json:"id"`
	Event         AlertEvent         `gorm:"size:30;not null;index" json:"event"`
	TripId        int                `gorm:"index;not null" json:"trip_id"`
	ClientId      *int               `gorm:"index" json:"client_id"`
	Payload       []byte             `gorm:"type:json" json:"payload"`
	CorrelationId string             `gorm:"size:64;index" json:"correlation_id"`
	PublishStatus AlertPublishStatus `gorm:"type:enum('PENDING','PROCESSING','PUBLISHED','FAILED','DEAD');default:'PENDING';index" json:"publish_status"`

	PublishAttempts  int        `gorm:"default:0" json:"publish_attempts"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	NextAttemptAt    *time.Time `gorm:"index" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:64" json:"locked_by"`
	PublishedAt      *time.Time `json:"published_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EmitAlert writes the alert row inside the caller's DB transaction. It does
// NOT publish; the dispatcher picks the row up after commit, so a rolled-back
// operation emits nothing.
func EmitAlert(ctx context.Context, tx *gorm.DB, event AlertEvent, tripId int, clientId *int, payload interface{}) error {
	var payloadInByte []byte
	var err error
	if payload != nil {
		payloadInByte, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	record := AlertRecord{
		Event:         event,
		TripId:        tripId,
		ClientId:      clientId,
		Payload:       payloadInByte,
		CorrelationId: correlationIdFromContextOrNew(ctx),
		PublishStatus: AlertPublishStatusPending,
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
