package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Actor     string         `gorm:"not null" json:"actor"`
	Action    string         `gorm:"not null" json:"action"` // auth.register, auth.login, chat.delete, reminders.send
	Target    string         `json:"target"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Chat{},
		&Message{},
		&Vote{},
		&Stream{},
		&Doctor{},
		&Appointment{},
		&AmbulanceBooking{},
		&Lab{},
		&LabTest{},
		&LabBooking{},
		&Medication{},
		&MedicationReminder{},
		&Prescription{},
		&PushSubscription{},
		&AuditLog{},
	}
}
