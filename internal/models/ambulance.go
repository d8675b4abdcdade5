package models

import (
	"time"

	"github.com/google/uuid"
)

type AmbulanceBooking struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PickupLocation string    `gorm:"not null" json:"pickup_location"`
	Destination    string    `gorm:"not null" json:"destination"`
	Time           time.Time `gorm:"not null" json:"time"`
	Status         string    `gorm:"size:16;not null;default:booked" json:"status"`
}
