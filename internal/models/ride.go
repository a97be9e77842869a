package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusActive    RideStatus = "Active"
	RideStatusCompleted RideStatus = "Completed"
	RideStatusCancelled RideStatus = "Cancelled"
)

// Seat capacity bounds for an offered ride.
const (
	MinRideSeats = 1
	MaxRideSeats = 8
)

type Ride struct {
	gorm.Model
	DriverID       uint          `json:"driver_id" gorm:"not null;index"`
	Driver         *User         `json:"driver,omitempty"`
	FromLocation   string        `json:"from_location" gorm:"not null"`
	ToLocation     string        `json:"to_location" gorm:"not null"`
	DepartureTime  time.Time     `json:"departure_time" gorm:"not null;index"`
	TotalSeats     int           `json:"total_seats" gorm:"not null"`
	AvailableSeats int           `json:"available_seats" gorm:"not null"`
	PricePerPerson float64       `json:"price_per_person" gorm:"type:decimal(10,2);not null"`
	Status         RideStatus    `json:"status" gorm:"not null;default:'Active'"`
	Bookings       []RideBooking `json:"bookings,omitempty"`
}
