package models

import (
	"time"

	"frs/src/types"
)

type Flight struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	FlightNumber string     `gorm:"uniqueIndex" json:"flight_number"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	DepartsAt    *time.Time `json:"departs_at,omitempty"`
	ArrivesAt    *time.Time `json:"arrives_at,omitempty"`
	// Seat counters are only ever mutated through common.AdjustSeats.
	TotalSeats     int `json:"total_seats"`
	AvailableSeats int `json:"available_seats"`

	Prices []Price `gorm:"foreignKey:flight_id" json:"prices,omitempty"`

	types.Timestamps
}
