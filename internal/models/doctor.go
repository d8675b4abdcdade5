package models

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null;index" json:"name"`
	Specialty    string `gorm:"not null" json:"specialty"`
	Hospital     string `gorm:"not null" json:"hospital"`
	Experience   int    `gorm:"not null" json:"experience"`
	Availability string `gorm:"not null" json:"availability"`
	Fees         int    `gorm:"not null" json:"fees"`
	Bio          string `gorm:"type:text" json:"bio"`
}

const (
	StatusBooked      = "booked"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

type Appointment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	DoctorID uint      `gorm:"not null;index" json:"doctor_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Time     time.Time `gorm:"not null" json:"time"`
	Status   string    `gorm:"size:16;not null;default:booked" json:"status"`
}
