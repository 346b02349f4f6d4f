package common

import (
	"frs/src/db"
	"frs/src/models"
	"frs/src/types"
	"log"

	"gorm.io/gorm"
)

// AdjustSeats applies a signed delta to a flight's available seat count.
// The guard lives in the WHERE clause so two concurrent bookings can never
// drive the count negative or past the cabin total. Zero rows affected
// means the guard rejected the write, not that the flight is missing.
func AdjustSeats(tx *gorm.DB, flightId uint, delta int) error {
	res := tx.
		Model(&models.Flight{}).
		Where("id = ? AND available_seats + ? >= 0 AND available_seats + ? <= total_seats", flightId, delta, delta).
		Update("available_seats", gorm.Expr("available_seats + ?", delta))
	if res.Error != nil {
		log.Printf("[Inventory] seat adjust failed for flight %d: %s\n", flightId, res.Error.Error())
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Flight{}).Where(&models.Flight{ID: flightId}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return types.ErrFlightNotFound
		}
		if delta < 0 {
			return types.ErrInsufficientSeats
		}
		return types.ErrSeatUpdateFailed
	}
	return nil
}

func HasAvailableSeats(tx *gorm.DB, flightId uint, wanted int) (bool, error) {
	free, err := getAvailableSeats(tx, flightId)
	if err != nil {
		return false, err
	}
	return free >= wanted, nil
}

func GetAvailableSeats(flightId uint) (free int, total int, err error) {
	db := db.GetDb()
	var flight models.Flight
	if err := db.Where(&models.Flight{ID: flightId}).First(&flight).Error; err != nil {
		return 0, 0, types.ErrFlightNotFound
	}
	return flight.AvailableSeats, flight.TotalSeats, nil
}

func getAvailableSeats(tx *gorm.DB, flightId uint) (int, error) {
	var flight models.Flight
	if err := tx.Where(&models.Flight{ID: flightId}).First(&flight).Error; err != nil {
		return 0, types.ErrFlightNotFound
	}
	return flight.AvailableSeats, nil
}
