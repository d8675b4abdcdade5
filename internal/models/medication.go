package models

import (
	"time"

	"github.com/google/uuid"
)

type Medication struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	Dosage    string     `gorm:"not null" json:"dosage"`
	Notes     string     `gorm:"type:text" json:"notes"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

const (
	ReminderPending = "pending"
	ReminderTaken   = "taken"
	ReminderMissed  = "missed"
)

type MedicationReminder struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MedicationID uint      `gorm:"not null;index" json:"medication_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	TimeOfDay    string    `gorm:"size:5;not null" json:"time_of_day"` // HH:MM
	Status       string    `gorm:"size:16;not null;default:pending" json:"status"`
}
