package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"

// Pricing constants. Amounts are integer minor units; the tax rate is a
// whole percentage applied to the base fare before the per-booking fee.
const (
	TAX_RATE_PERCENT  int64 = 10
	SERVICE_FEE_CENTS int64 = 2500
)

// Booking reference length bounds generated refs stay within. Stored
// refs up to 20 chars are accepted on lookup.
const (
	BOOKING_REF_MIN_LEN = 6
	BOOKING_REF_MAX_LEN = 8
)

const (
	NOTIFICATIONS_QUEUE = "Notifications"
	NOTIFICATIONS_TOPIC = "notifications"
)

// How long a booking may sit in pending before the sweep cancels it.
func BookingPaymentTTL() time.Duration {
	if v := os.Getenv("BOOKING_PAYMENT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 30 * time.Minute
}

func IsLocalEnv() bool {
	return os.Getenv("API_ENV") == "local" || os.Getenv("API_ENV") == ""
}
