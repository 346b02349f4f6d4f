package models

import (
	"time"

	"frs/src/types"
)

// Price is a fare quote for a flight and class over [ValidFrom, ValidTo).
// UnitAmount is in minor currency units.
type Price struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	FlightID   uint            `gorm:"index" json:"flight_id"`
	FareClass  types.FareClass `gorm:"index" json:"fare_class"`
	Currency   string          `json:"currency"`
	UnitAmount int64           `json:"unit_amount"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidTo    time.Time       `json:"valid_to"`

	Flight *Flight `gorm:"foreignKey:flight_id" json:"flight,omitempty"`

	types.Timestamps
}
