package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// RideBooking holds one passenger's seat on a ride. A cancelled booking
// never flips back to Confirmed; rebooking creates a new row.
type RideBooking struct {
	gorm.Model
	RideID      uint          `json:"ride_id" gorm:"not null;index"`
	Ride        Ride          `json:"-"`
	PassengerID uint          `json:"passenger_id" gorm:"not null;index"`
	Passenger   *User         `json:"passenger,omitempty"`
	Status      BookingStatus `json:"status" gorm:"not null;default:'Confirmed'"`
}

func (RideBooking) TableName() string {
	return "ride_bookings"
}
