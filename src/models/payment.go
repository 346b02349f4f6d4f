package models

import (
	"time"

	"frs/src/types"
)

type Payment struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	BookingID uint                `gorm:"uniqueIndex" json:"booking_id"`
	Amount    int64               `json:"amount"`
	Currency  string              `json:"currency"`
	Status    types.PaymentStatus `json:"status"`
	Method    string              `json:"method,omitempty"`
	// Gateway handle and the client-side secret needed to complete it.
	PaymentIntentId *string `json:"payment_intent_id,omitempty"`
	ClientSecret    *string `json:"-"`
	// Append-only trace of gateway events and cancellation reasons.
	TransactionTrace string     `json:"transaction_trace,omitempty"`
	UserID           *uint      `json:"user_id,omitempty"`
	PaymentDate      *time.Time `json:"payment_date,omitempty"`

	Booking *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}
