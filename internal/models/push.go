package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PushSubscription stores the browser's Web Push subscription object as-is.
type PushSubscription struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Subscription datatypes.JSON `gorm:"not null" json:"subscription"`
}
