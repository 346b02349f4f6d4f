package models

import (
	"time"

	"frs/src/types"
)

type Booking struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	BookingRef string              `gorm:"uniqueIndex;size:20" json:"booking_ref"`
	UserID     *uint               `gorm:"index" json:"user_id,omitempty"` // nil for guest bookings
	FlightID   uint                `gorm:"index" json:"flight_id"`
	PriceID    uint                `json:"price_id"`
	FareClass  types.FareClass     `json:"fare_class"`
	Status     types.BookingStatus `json:"status"`
	// TotalAmount is fixed at creation time, in minor currency units.
	TotalAmount    int64      `json:"total_amount"`
	Currency       string     `json:"currency"`
	PassengerCount int        `json:"passenger_count"`
	BookedAt       *time.Time `json:"booked_at,omitempty"`
	// Contact details for guest bookings; empty when a user owns the row.
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	Flight     *Flight     `gorm:"foreignKey:flight_id" json:"flight,omitempty"`
	Price      *Price      `gorm:"foreignKey:price_id" json:"price,omitempty"`
	User       *User       `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Payment    *Payment    `gorm:"foreignKey:booking_id" json:"payment,omitempty"`
	Passengers []Passenger `gorm:"foreignKey:booking_id;constraint:OnDelete:CASCADE" json:"passengers,omitempty"`

	types.Timestamps
}
