package common

import (
	"errors"
	"fmt"
	"frs/src/config"
	"frs/src/db"
	"frs/src/lib"
	"frs/src/models"
	"frs/src/types"
	"frs/src/utils"
	"log"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

const refMaxAttempts = 10

// Payment intent creation goes through this indirection so tests can
// swap in a failing gateway.
var createPaymentIntent = lib.CreateBookingPaymentIntent

func NewPaymentIntentClient(fn func(amount int64, currency string, bookingId uint) (*stripe.PaymentIntent, error)) {
	createPaymentIntent = fn
}

type CreateBookingInput struct {
	FlightID       uint
	FareClass      types.FareClass
	Passengers     []types.PassengerInput
	PassengerCount int
	UserID         *uint
	ContactEmail   string
	ContactPhone   string
}

func (in *CreateBookingInput) paxCount() int {
	if len(in.Passengers) > 0 {
		return len(in.Passengers)
	}
	if in.PassengerCount > 0 {
		return in.PassengerCount
	}
	return 1
}

// CreateNewBooking runs the creation sequence step by step. The steps
// commit independently rather than inside one transaction; a failure
// after the booking row exists deletes that row (passengers cascade)
// and re-returns the error. The seat decrement is not reversed when a
// later step fails.
func CreateNewBooking(input *CreateBookingInput) (*models.Booking, error) {
	gdb := db.GetDb()
	pax := input.paxCount()

	var flight models.Flight
	if err := gdb.Where(&models.Flight{ID: input.FlightID}).First(&flight).Error; err != nil {
		return nil, types.ErrFlightNotFound
	}

	ok, err := HasAvailableSeats(gdb, flight.ID, pax)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInsufficientSeats
	}

	price, err := ResolveActivePrice(gdb, flight.ID, input.FareClass, time.Now())
	if err != nil {
		return nil, err
	}

	total := CalculateTotal(price.UnitAmount, pax)

	ref, err := utils.GenerateBookingRef(refMaxAttempts)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	booking := models.Booking{
		BookingRef:     ref,
		UserID:         input.UserID,
		FlightID:       flight.ID,
		PriceID:        price.ID,
		FareClass:      price.FareClass,
		Status:         types.BOOKING_PENDING,
		TotalAmount:    total,
		Currency:       price.Currency,
		PassengerCount: pax,
		BookedAt:       &now,
		ContactEmail:   input.ContactEmail,
		ContactPhone:   input.ContactPhone,
	}
	if err := gdb.Create(&booking).Error; err != nil {
		return nil, err
	}

	if err := createPassengers(gdb, &booking, input); err != nil {
		compensateBooking(gdb, booking.ID, err)
		return nil, err
	}

	if err := AdjustSeats(gdb, flight.ID, -pax); err != nil {
		compensateBooking(gdb, booking.ID, err)
		return nil, err
	}

	intent, err := createPaymentIntent(total, price.Currency, booking.ID)
	if err != nil {
		log.Printf("[Booking] payment intent failed for booking %d: %s\n", booking.ID, err.Error())
		compensateBooking(gdb, booking.ID, err)
		return nil, types.ErrPaymentIntentFailed
	}
	if intent == nil || intent.ID == "" {
		err := types.ErrPaymentIntentFailed
		compensateBooking(gdb, booking.ID, err)
		return nil, err
	}

	payment := models.Payment{
		BookingID:       booking.ID,
		Amount:          total,
		Currency:        price.Currency,
		Status:          types.PAYMENT_PENDING,
		PaymentIntentId: &intent.ID,
		ClientSecret:    &intent.ClientSecret,
		UserID:          input.UserID,
	}
	if err := gdb.Create(&payment).Error; err != nil {
		compensateBooking(gdb, booking.ID, err)
		return nil, err
	}

	var created models.Booking
	if err := gdb.
		Where(&models.Booking{ID: booking.ID}).
		Preload("Flight").
		Preload("Price").
		Preload("Payment").
		Preload("Passengers").
		First(&created).
		Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func createPassengers(gdb *gorm.DB, booking *models.Booking, input *CreateBookingInput) error {
	if len(input.Passengers) == 0 {
		return nil
	}
	seen := map[string]bool{}
	for _, p := range input.Passengers {
		if seen[p.PassportNumber] {
			return types.ErrDuplicatePassport
		}
		seen[p.PassportNumber] = true
	}
	for _, p := range input.Passengers {
		dob, err := utils.ParseDate(p.DateOfBirth)
		if err != nil {
			return err
		}
		passenger := models.Passenger{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DateOfBirth:    dob,
			PassportNumber: p.PassportNumber,
			Nationality:    p.Nationality,
			BookingID:      booking.ID,
			UserID:         input.UserID,
		}
		if err := gdb.Create(&passenger).Error; err != nil {
			return err
		}
	}
	return nil
}

// compensateBooking removes the rows outright. A soft delete would keep
// the passport and reference values in their unique indexes and block an
// identical retry.
func compensateBooking(gdb *gorm.DB, bookingId uint, cause error) {
	log.Printf("[Booking] compensating booking %d: %s\n", bookingId, cause.Error())
	if err := gdb.Unscoped().Where(&models.Passenger{BookingID: bookingId}).Delete(&models.Passenger{}).Error; err != nil {
		log.Printf("[Booking] failed to delete passengers for booking %d: %s\n", bookingId, err.Error())
	}
	if err := gdb.Unscoped().Delete(&models.Booking{ID: bookingId}).Error; err != nil {
		log.Printf("[Booking] failed to delete booking %d: %s\n", bookingId, err.Error())
	}
}

// BookingNotificationData is the payload every booking notification
// carries. Guest contact details ride along so the producer can resolve
// a recipient without a user row.
func BookingNotificationData(b *models.Booking) types.JSONB {
	data := types.JSONB{
		"booking_id":  b.ID,
		"booking_ref": b.BookingRef,
	}
	if b.ContactEmail != "" {
		data["contact_email"] = b.ContactEmail
	}
	if b.ContactPhone != "" {
		data["contact_phone"] = b.ContactPhone
	}
	return data
}

// ConfirmBooking moves a pending booking to confirmed and fires the
// confirmation notification. Producer failures never undo the confirm.
func ConfirmBooking(bookingId uint) (*models.Booking, error) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.Where(&models.Booking{ID: bookingId}).First(&booking).Error; err != nil {
		return nil, types.ErrBookingNotFound
	}
	if !booking.Status.CanTransitionTo(types.BOOKING_CONFIRMED) {
		return nil, types.ErrInvalidStatusTransition
	}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId, Status: booking.Status}).
			Update("status", types.BOOKING_CONFIRMED)
		if res.Error != nil {
			return res.Error
		}
		// Zero rows means a concurrent transition won the race.
		if res.RowsAffected == 0 {
			return types.ErrInvalidStatusTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	go func() {
		if err := EnqueueNotification(types.NOTIFY_BOOKING_CONFIRMED, booking.UserID, BookingNotificationData(&booking)); err != nil {
			log.Printf("[Booking] failed to enqueue confirmation notification for %d: %s\n", booking.ID, err.Error())
		}
	}()
	booking.Status = types.BOOKING_CONFIRMED
	return &booking, nil
}

// CancelBooking cancels a booking, marks any linked payment refunded and
// records the reason on its trace. Seats taken at creation time are not
// returned to the pool.
func CancelBooking(bookingId uint, reason string) (*models.Booking, error) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Where(&models.Booking{ID: bookingId}).
		Preload("Payment").
		First(&booking).
		Error; err != nil {
		return nil, types.ErrBookingNotFound
	}
	if !booking.Status.CanTransitionTo(types.BOOKING_CANCELED) {
		return nil, types.ErrInvalidStatusTransition
	}
	err := gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId, Status: booking.Status}).
			Update("status", types.BOOKING_CANCELED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrInvalidStatusTransition
		}
		if booking.Payment != nil {
			trace := booking.Payment.TransactionTrace
			if trace != "" {
				trace += "\n"
			}
			trace += fmt.Sprintf("canceled at %s: %s", time.Now().Format(config.TIME_PARSE_FORMAT), reason)
			if err := tx.
				Model(&models.Payment{}).
				Where(&models.Payment{ID: booking.Payment.ID}).
				Updates(map[string]any{
					"status":            types.PAYMENT_REFUNDED,
					"transaction_trace": trace,
				}).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if booking.Payment != nil && booking.Payment.PaymentIntentId != nil {
		intentId := *booking.Payment.PaymentIntentId
		status := booking.Payment.Status
		go func() {
			switch status {
			case types.PAYMENT_PAID:
				if _, err := lib.RefundPaymentIntent(intentId); err != nil {
					log.Printf("[Booking] refund failed for intent %s: %s\n", intentId, err.Error())
				}
			case types.PAYMENT_PENDING:
				if err := lib.CancelPaymentIntent(intentId); err != nil {
					log.Printf("[Booking] could not cancel intent %s: %s\n", intentId, err.Error())
				}
			}
		}()
	}
	go func() {
		data := BookingNotificationData(&booking)
		data["reason"] = reason
		if err := EnqueueNotification(types.NOTIFY_BOOKING_CANCELED, booking.UserID, data); err != nil {
			log.Printf("[Booking] failed to enqueue cancellation notification for %d: %s\n", booking.ID, err.Error())
		}
	}()
	booking.Status = types.BOOKING_CANCELED
	return &booking, nil
}

// FindGuestBooking looks a booking up by reference and passenger last
// name. Owned bookings and mismatches all come back as not found so the
// response never reveals which part of the pair was wrong.
func FindGuestBooking(ref string, lastName string) (*models.Booking, error) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Where(&models.Booking{BookingRef: strings.ToUpper(ref)}).
		Preload("Flight").
		Preload("Price").
		Preload("Payment").
		Preload("Passengers").
		First(&booking).
		Error; err != nil {
		return nil, types.ErrBookingNotFound
	}
	if booking.UserID != nil {
		return nil, types.ErrBookingNotFound
	}
	for _, p := range booking.Passengers {
		if strings.EqualFold(p.LastName, lastName) {
			return &booking, nil
		}
	}
	return nil, types.ErrBookingNotFound
}

func CancelGuestBooking(ref string, lastName string, reason string) (*models.Booking, error) {
	booking, err := FindGuestBooking(ref, lastName)
	if err != nil {
		return nil, err
	}
	return CancelBooking(booking.ID, reason)
}

// GetBookingForUser loads a hydrated booking and enforces ownership.
func GetBookingForUser(bookingId uint, userId uint) (*models.Booking, error) {
	gdb := db.GetDb()
	var booking models.Booking
	if err := gdb.
		Where(&models.Booking{ID: bookingId}).
		Preload("Flight").
		Preload("Price").
		Preload("Payment").
		Preload("Passengers").
		First(&booking).
		Error; err != nil {
		return nil, types.ErrBookingNotFound
	}
	if booking.UserID == nil || *booking.UserID != userId {
		return nil, types.ErrForbidden
	}
	return &booking, nil
}

// SweepExpiredPendingBookings cancels bookings that sat in pending past
// the payment TTL. Each one goes through the guarded cancel path.
func SweepExpiredPendingBookings() {
	gdb := db.GetDb()
	cutoff := time.Now().Add(-config.BookingPaymentTTL())
	var stale []models.Booking
	if err := gdb.
		Where(&models.Booking{Status: types.BOOKING_PENDING}).
		Where("created_at < ?", cutoff).
		Find(&stale).
		Error; err != nil {
		log.Printf("[Sweep] failed to list stale pending bookings: %s\n", err.Error())
		return
	}
	if len(stale) == 0 {
		return
	}
	canceled := 0
	for _, b := range stale {
		if _, err := CancelBooking(b.ID, "payment window expired"); err != nil {
			if errors.Is(err, types.ErrInvalidStatusTransition) {
				continue
			}
			log.Printf("[Sweep] failed to cancel booking %d: %s\n", b.ID, err.Error())
			continue
		}
		canceled++
	}
	log.Printf("[Sweep] canceled %d of %d stale pending bookings\n", canceled, len(stale))
}
