package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Lab struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `gorm:"not null" json:"address"`
	TimeSlots datatypes.JSON `gorm:"not null" json:"time_slots"`
}

type LabTest struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Type  string `gorm:"not null" json:"type"`
	Price int    `gorm:"not null" json:"price"`
	LabID uint   `gorm:"not null;index" json:"lab_id"`
}

const (
	LocationHome   = "home"
	LocationClinic = "clinic"
)

type LabBooking struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	LabID        uint      `gorm:"not null" json:"lab_id"`
	LabTestID    uint      `gorm:"not null" json:"lab_test_id"`
	Time         time.Time `gorm:"not null" json:"time"`
	LocationType string    `gorm:"size:16;not null" json:"location_type"`
	Status       string    `gorm:"size:16;not null;default:booked" json:"status"`
}
