package utils

import (
	"crypto/rand"
	"fmt"
	"frs/src/config"
	"frs/src/db"
	"frs/src/models"
	"log"
	"math/big"
	"os"
	"time"
)

const bookingRefCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomBookingRef builds a single candidate reference. Length is picked
// uniformly from the allowed range.
func RandomBookingRef() string {
	span := config.BOOKING_REF_MAX_LEN - config.BOOKING_REF_MIN_LEN + 1
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(span)))
	length := config.BOOKING_REF_MIN_LEN + int(n.Int64())
	buf := make([]byte, length)
	for i := range buf {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(bookingRefCharset))))
		buf[i] = bookingRefCharset[idx.Int64()]
	}
	return string(buf)
}

// GenerateBookingRef returns a reference that does not collide with any
// existing booking. Regenerates on collision, up to maxAttempts.
func GenerateBookingRef(maxAttempts int) (string, error) {
	for range maxAttempts {
		ref := RandomBookingRef()
		exists, err := RefExists(ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
		log.Printf("[BookingRef] collision on %s, regenerating\n", ref)
	}
	return "", fmt.Errorf("could not generate a unique booking reference after %d attempts", maxAttempts)
}

func RefExists(ref string) (bool, error) {
	db := db.GetDb()
	var count int64
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{BookingRef: ref}).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WithSuffix appends the per-environment queue suffix when one is set.
func WithSuffix(name string) string {
	suffix := os.Getenv("QUEUE_SUFFIX")
	if suffix == "" {
		return name
	}
	return fmt.Sprintf("%s%s", name, suffix)
}

func ParseDate(value string) (*time.Time, error) {
	d, err := time.Parse(config.DATE_PARSE_FORMAT, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func ParseDateTime(value string) (*time.Time, error) {
	t, err := time.Parse(config.TIME_PARSE_FORMAT, value)
	if err != nil {
		return nil, err
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	return &t, nil
}
