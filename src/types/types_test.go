package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	statuses := []BookingStatus{
		BOOKING_PENDING,
		BOOKING_CONFIRMED,
		BOOKING_COMPLETED,
		BOOKING_CANCELED,
	}
	allowed := map[BookingStatus][]BookingStatus{
		BOOKING_PENDING:   {BOOKING_CONFIRMED, BOOKING_CANCELED},
		BOOKING_CONFIRMED: {BOOKING_COMPLETED, BOOKING_CANCELED},
		BOOKING_COMPLETED: {},
		BOOKING_CANCELED:  {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			got := from.CanTransitionTo(to)
			assert.Equalf(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestBookingStatusSelfTransition(t *testing.T) {
	for _, s := range []BookingStatus{BOOKING_PENDING, BOOKING_CONFIRMED, BOOKING_COMPLETED, BOOKING_CANCELED} {
		assert.Falsef(t, s.CanTransitionTo(s), "%s -> %s should be rejected", s, s)
	}
}

func TestFareClassValid(t *testing.T) {
	assert.True(t, FARE_ECONOMY.Valid())
	assert.True(t, FARE_BUSINESS.Valid())
	assert.True(t, FARE_FIRST.Valid())
	assert.False(t, FareClass("premium").Valid())
	assert.False(t, FareClass("").Valid())
}
