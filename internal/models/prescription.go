package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PrescriptionActive    = "active"
	PrescriptionExpired   = "expired"
	PrescriptionCancelled = "cancelled"
)

type Prescription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	DoctorID         uint       `gorm:"not null" json:"doctor_id"`
	Medication       string     `gorm:"not null" json:"medication"`
	Dosage           string     `gorm:"not null" json:"dosage"`
	Instructions     string     `gorm:"type:text" json:"instructions"`
	IssuedAt         time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Refillable       bool       `gorm:"not null;default:false" json:"refillable"`
	RefillsRemaining int        `gorm:"not null;default:0" json:"refills_remaining"`
	FileURL          string     `json:"file_url"`
	Status           string     `gorm:"size:16;not null;default:active" json:"status"`
}
