package types

import "errors"

// Stable error taxonomy surfaced by the booking orchestrators. Handlers
// translate these with errors.Is; everything else maps to 500.
var (
	ErrFlightNotFound          = errors.New("flight not found")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrNoActivePricing         = errors.New("no active pricing for flight")
	ErrInsufficientSeats       = errors.New("not enough available seats")
	ErrSeatUpdateFailed        = errors.New("seat inventory update failed")
	ErrPaymentIntentFailed     = errors.New("payment authorization failed")
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
	ErrDuplicatePassport       = errors.New("duplicate passport number")
	ErrForbidden               = errors.New("not allowed to access this booking")
)
