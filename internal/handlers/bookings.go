package handlers

import (
	"strconv"
	"time"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BookRide claims one seat on a ride for the caller. The seat decrement and
// the booking insert commit together or not at all; the guarded UPDATE on the
// ride row serializes concurrent bookings so the seat count can never go
// negative.
func BookRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		rideID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		var ride models.Ride
		if err := tx.First(&ride, rideID).Error; err != nil {
			tx.Rollback()
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		if ride.DriverID == userId {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Cannot book your own ride"})
			return
		}

		if ride.Status != models.RideStatusActive {
			tx.Rollback()
			c.JSON(409, gin.H{"error": "Ride is not available"})
			return
		}

		if ride.AvailableSeats <= 0 {
			tx.Rollback()
			c.JSON(409, gin.H{"error": "No available seats"})
			return
		}

		if !ride.DepartureTime.After(time.Now()) {
			tx.Rollback()
			c.JSON(409, gin.H{"error": "Ride has already departed"})
			return
		}

		// Claim the seat. The WHERE clause re-checks status and seat count
		// under the row lock, so a ride cancelled or filled up by a
		// concurrent request affects zero rows here.
		result := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND available_seats > 0",
				ride.ID, models.RideStatusActive).
			Update("available_seats", gorm.Expr("available_seats - 1"))
		if result.Error != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to book ride"})
			return
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			var current models.Ride
			if err := db.First(&current, rideID).Error; err == nil && current.Status != models.RideStatusActive {
				c.JSON(409, gin.H{"error": "Ride is not available"})
				return
			}
			c.JSON(409, gin.H{"error": "No available seats"})
			return
		}

		// Only confirmed bookings block a rebook; a passenger who cancelled
		// may book again.
		var existing int64
		if err := tx.Model(&models.RideBooking{}).
			Where("ride_id = ? AND passenger_id = ? AND status = ?",
				ride.ID, userId, models.BookingStatusConfirmed).
			Count(&existing).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to book ride"})
			return
		}
		if existing > 0 {
			tx.Rollback()
			c.JSON(409, gin.H{"error": "You have already booked this ride"})
			return
		}

		booking := models.RideBooking{
			RideID:      ride.ID,
			PassengerID: userId,
			Status:      models.BookingStatusConfirmed,
		}
		if err := tx.Create(&booking).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to book ride"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to book ride"})
			return
		}

		services.InvalidateStats(c.Request.Context(), transportStatsKey)

		var updated models.Ride
		if err := db.Preload("Driver").
			Preload("Bookings", "status = ?", models.BookingStatusConfirmed).
			Preload("Bookings.Passenger").
			First(&updated, ride.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve ride"})
			return
		}
		if err := db.Preload("Passenger").First(&booking, booking.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve booking"})
			return
		}

		c.JSON(201, gin.H{
			"message": "Ride booked successfully",
			"booking": bookingJSON(&booking),
			"ride":    rideJSON(&updated),
		})
	}
}

// GetMyBookings lists the caller's bookings, newest first
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		var total int64
		if err := db.Model(&models.RideBooking{}).Where("passenger_id = ?", userId).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve bookings"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var bookings []models.RideBooking
		if err := db.Where("passenger_id = ?", userId).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("Passenger").
			Preload("Ride").
			Preload("Ride.Driver").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve bookings"})
			return
		}

		bookingList := make([]gin.H, 0, len(bookings))
		for i := range bookings {
			entry := bookingJSON(&bookings[i])
			entry["ride"] = rideJSON(&bookings[i].Ride)
			bookingList = append(bookingList, entry)
		}

		c.JSON(200, gin.H{
			"bookings":   bookingList,
			"pagination": pagination,
		})
	}
}

// CancelBooking releases the caller's seat. The status flip and the seat
// increment commit atomically; the Confirmed guard means a booking can only
// be cancelled once, so the increment can never push available_seats past
// total_seats.
func CancelBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		var booking models.RideBooking
		if err := tx.Where("id = ? AND passenger_id = ?", bookingID, userId).First(&booking).Error; err != nil {
			tx.Rollback()
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.Status != models.BookingStatusConfirmed {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Booking cannot be cancelled"})
			return
		}

		var ride models.Ride
		if err := tx.First(&ride, booking.RideID).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		if !ride.DepartureTime.After(time.Now()) {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Cannot cancel booking for departed ride"})
			return
		}

		result := tx.Model(&models.RideBooking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusConfirmed).
			Update("status", models.BookingStatusCancelled)
		if result.Error != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}
		if result.RowsAffected == 0 {
			// Lost a race with the driver cancelling the whole ride.
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Booking cannot be cancelled"})
			return
		}

		if err := tx.Model(&models.Ride{}).
			Where("id = ?", ride.ID).
			Update("available_seats", gorm.Expr("available_seats + 1")).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		services.InvalidateStats(c.Request.Context(), transportStatsKey)

		if err := db.Preload("Passenger").First(&booking, booking.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve booking"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Booking cancelled successfully",
			"booking": bookingJSON(&booking),
		})
	}
}
