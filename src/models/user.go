package models

import "frs/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
	UID   string `json:"uid,omitempty"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
