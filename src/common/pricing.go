package common

import (
	"errors"
	"frs/src/config"
	"frs/src/models"
	"frs/src/types"
	"time"

	"gorm.io/gorm"
)

// GetActivePrice resolves the fare for a flight and class at the given
// instant. Validity windows are half-open: [ValidFrom, ValidTo).
func GetActivePrice(tx *gorm.DB, flightId uint, fareClass types.FareClass, asOf time.Time) (*models.Price, error) {
	var price models.Price
	err := tx.
		Where(&models.Price{FlightID: flightId, FareClass: fareClass}).
		Where("valid_from <= ? AND valid_to > ?", asOf, asOf).
		Order("valid_from DESC").
		First(&price).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNoActivePricing
		}
		return nil, err
	}
	return &price, nil
}

func GetActivePrices(tx *gorm.DB, flightId uint, asOf time.Time) ([]models.Price, error) {
	var prices []models.Price
	err := tx.
		Where(&models.Price{FlightID: flightId}).
		Where("valid_from <= ? AND valid_to > ?", asOf, asOf).
		Order("unit_amount ASC").
		Find(&prices).
		Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// ResolveActivePrice prefers the requested class and falls back to the
// cheapest active fare of any class when the class has no open window.
func ResolveActivePrice(tx *gorm.DB, flightId uint, fareClass types.FareClass, asOf time.Time) (*models.Price, error) {
	price, err := GetActivePrice(tx, flightId, fareClass, asOf)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, types.ErrNoActivePricing) {
		return nil, err
	}
	prices, err := GetActivePrices(tx, flightId, asOf)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, types.ErrNoActivePricing
	}
	return &prices[0], nil
}

// CalculateTotal prices a booking in minor units: tax on the per-seat
// fare, times passengers, plus the flat service fee.
func CalculateTotal(unitAmount int64, passengers int) int64 {
	taxed := unitAmount * (100 + config.TAX_RATE_PERCENT) / 100
	return taxed*int64(passengers) + config.SERVICE_FEE_CENTS
}
