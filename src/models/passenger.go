package models

import (
	"time"

	"frs/src/types"
)

type Passenger struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `gorm:"index" json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	PassportNumber string     `gorm:"uniqueIndex;size:20" json:"passport_number"`
	Nationality    string     `json:"nationality"`
	BookingID      uint       `gorm:"index" json:"booking_id"`
	UserID         *uint      `json:"user_id,omitempty"` // nil for guest passengers

	Booking *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}
