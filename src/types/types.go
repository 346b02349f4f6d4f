package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type FareClass string

const (
	FARE_ECONOMY  FareClass = "economy"
	FARE_BUSINESS FareClass = "business"
	FARE_FIRST    FareClass = "first"
)

func (f FareClass) Valid() bool {
	switch f {
	case FARE_ECONOMY, FARE_BUSINESS, FARE_FIRST:
		return true
	}
	return false
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELED  BookingStatus = "canceled"
)

// CanTransitionTo is the single gate every status mutation goes through.
// Completed and canceled are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BOOKING_PENDING:
		return next == BOOKING_CONFIRMED || next == BOOKING_CANCELED
	case BOOKING_CONFIRMED:
		return next == BOOKING_COMPLETED || next == BOOKING_CANCELED
	}
	return false
}

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
	PAYMENT_FAILED   PaymentStatus = "failed"
)

type NotificationStatus string

const (
	NOTIFICATION_PENDING    NotificationStatus = "pending"
	NOTIFICATION_PROCESSING NotificationStatus = "processing"
	NOTIFICATION_SENT       NotificationStatus = "sent"
	NOTIFICATION_FAILED     NotificationStatus = "failed"
)

type ChannelType string

const (
	CHANNEL_EMAIL ChannelType = "email"
	CHANNEL_SMS   ChannelType = "sms"
)

type NotificationKind string

const (
	NOTIFY_BOOKING_CONFIRMED NotificationKind = "booking_confirmed"
	NOTIFY_BOOKING_CANCELED  NotificationKind = "booking_canceled"
	NOTIFY_PAYMENT_RECEIVED  NotificationKind = "payment_received"
	NOTIFY_USER_REGISTERED   NotificationKind = "user_registered"
)

type APIEnv string

const (
	Local      APIEnv = "local"
	Test       APIEnv = "test"
	Production APIEnv = "production"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PassengerInput struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	DateOfBirth    string `json:"date_of_birth" binding:"required,pastdate"`
	PassportNumber string `json:"passport_number" binding:"required,min=5,max=20"`
	Nationality    string `json:"nationality" binding:"required"`
}

type CreateBookingRequestBody struct {
	FlightID   uint             `json:"flight_id" binding:"required"`
	FareClass  string           `json:"fare_class" binding:"required,fareclass"`
	Passengers []PassengerInput `json:"passengers" binding:"omitempty,min=1,dive"`
	// Seats bought without named passengers. Ignored when Passengers is set.
	PassengerCount int `json:"passenger_count" binding:"omitempty,min=1,max=9"`
}

type CreateGuestBookingRequestBody struct {
	FlightID     uint             `json:"flight_id" binding:"required"`
	FareClass    string           `json:"fare_class" binding:"required,fareclass"`
	Passengers   []PassengerInput `json:"passengers" binding:"required,min=1,dive"`
	ContactEmail string           `json:"contact_email" binding:"required,email"`
	ContactPhone string           `json:"contact_phone,omitempty" binding:"omitempty,e164"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type GuestBookingLookupQuery struct {
	BookingRef string `form:"ref" binding:"required,min=6,max=20"`
	LastName   string `form:"last_name" binding:"required"`
}

type CancelGuestBookingRequestBody struct {
	BookingRef string `json:"booking_ref" binding:"required,min=6,max=20"`
	LastName   string `json:"last_name" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Handler consumes one raw queue message body and reports whether
// processing succeeded. A non-nil error leaves the message in the queue
// for redelivery after the visibility timeout lapses.
type Handler func(payload string) error
