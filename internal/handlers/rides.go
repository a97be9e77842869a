package handlers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const transportStatsKey = "stats:transport"

type OfferRideInput struct {
	FromLocation   string    `json:"from_location" binding:"required"`
	ToLocation     string    `json:"to_location" binding:"required"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	TotalSeats     int       `json:"total_seats" binding:"required"`
	PricePerPerson *float64  `json:"price_per_person" binding:"required"`
}

// OfferRide handles the creation of a new ride by a driver
func OfferRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input OfferRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !input.DepartureTime.After(time.Now()) {
			c.JSON(400, gin.H{"error": "Departure time must be in the future"})
			return
		}

		if input.TotalSeats < models.MinRideSeats || input.TotalSeats > models.MaxRideSeats {
			c.JSON(400, gin.H{"error": "Total seats must be between 1 and 8"})
			return
		}

		if *input.PricePerPerson < 0 {
			c.JSON(400, gin.H{"error": "Price cannot be negative"})
			return
		}

		var driver models.User
		if err := db.First(&driver, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		ride := models.Ride{
			DriverID:       userId,
			Driver:         &driver,
			FromLocation:   strings.TrimSpace(input.FromLocation),
			ToLocation:     strings.TrimSpace(input.ToLocation),
			DepartureTime:  input.DepartureTime,
			TotalSeats:     input.TotalSeats,
			AvailableSeats: input.TotalSeats,
			PricePerPerson: *input.PricePerPerson,
			Status:         models.RideStatusActive,
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to offer ride"})
			return
		}

		services.InvalidateStats(c.Request.Context(), transportStatsKey)

		c.JSON(201, gin.H{
			"message": "Ride offered successfully",
			"ride":    rideJSON(&ride),
		})
	}
}

// GetRides lists bookable rides: active, seats left, not yet departed.
// Supports from/to substring filters and an exact calendar-date filter.
func GetRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)
		fromLocation := c.Query("from")
		toLocation := c.Query("to")
		dateStr := c.Query("date")

		filtered := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("status = ? AND available_seats > 0 AND departure_time > ?",
				models.RideStatusActive, time.Now())
			if fromLocation != "" {
				tx = tx.Where("LOWER(from_location) LIKE ?", "%"+strings.ToLower(fromLocation)+"%")
			}
			if toLocation != "" {
				tx = tx.Where("LOWER(to_location) LIKE ?", "%"+strings.ToLower(toLocation)+"%")
			}
			return tx
		}

		if dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				if ts, tsErr := time.Parse(time.RFC3339, dateStr); tsErr == nil {
					day = ts
				} else {
					c.JSON(400, gin.H{"error": "Invalid date format"})
					return
				}
			}
			inner := filtered
			filtered = func(tx *gorm.DB) *gorm.DB {
				return inner(tx).Where("DATE(departure_time) = ?", day.Format("2006-01-02"))
			}
		}

		var total int64
		if err := filtered(db.Model(&models.Ride{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve rides"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var rides []models.Ride
		if err := filtered(db.Model(&models.Ride{})).
			Order("departure_time ASC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("Driver").
			Preload("Bookings", "status = ?", models.BookingStatusConfirmed).
			Preload("Bookings.Passenger").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve rides"})
			return
		}

		rideList := make([]gin.H, 0, len(rides))
		for i := range rides {
			rideList = append(rideList, rideJSON(&rides[i]))
		}

		c.JSON(200, gin.H{
			"rides":      rideList,
			"pagination": pagination,
		})
	}
}

// GetMyRides lists every ride offered by the caller, any status
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		var total int64
		if err := db.Model(&models.Ride{}).Where("driver_id = ?", userId).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve rides"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var rides []models.Ride
		if err := db.Where("driver_id = ?", userId).
			Order("departure_time DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("Driver").
			Preload("Bookings", "status = ?", models.BookingStatusConfirmed).
			Preload("Bookings.Passenger").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve rides"})
			return
		}

		rideList := make([]gin.H, 0, len(rides))
		for i := range rides {
			rideList = append(rideList, rideJSON(&rides[i]))
		}

		c.JSON(200, gin.H{
			"rides":      rideList,
			"pagination": pagination,
		})
	}
}

// GetRide returns full detail for one ride
func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var ride models.Ride
		if err := db.Preload("Driver").
			Preload("Bookings", "status = ?", models.BookingStatusConfirmed).
			Preload("Bookings.Passenger").
			First(&ride, rideID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		c.JSON(200, gin.H{"ride": rideJSON(&ride)})
	}
}

// CancelRide cancels a ride offered by the caller and cascades the
// cancellation to every confirmed booking on it.
func CancelRide(db *gorm.DB) gin.HandlerFunc {
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
		if err := tx.Where("id = ? AND driver_id = ?", rideID, userId).First(&ride).Error; err != nil {
			tx.Rollback()
			c.JSON(404, gin.H{"error": "Ride not found or access denied"})
			return
		}

		if ride.Status != models.RideStatusActive {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Ride cannot be cancelled"})
			return
		}

		if !ride.DepartureTime.After(time.Now()) {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Cannot cancel ride that has already departed"})
			return
		}

		// The status guard makes the cancel race-safe against an in-flight
		// booking: whichever transaction claims the row first wins.
		result := tx.Model(&models.Ride{}).
			Where("id = ? AND status = ?", ride.ID, models.RideStatusActive).
			Update("status", models.RideStatusCancelled)
		if result.Error != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			c.JSON(400, gin.H{"error": "Ride cannot be cancelled"})
			return
		}

		// Cascade to confirmed bookings; already-cancelled rows are untouched.
		// available_seats is left as-is, the ride is terminal either way.
		if err := tx.Model(&models.RideBooking{}).
			Where("ride_id = ? AND status = ?", ride.ID, models.BookingStatusConfirmed).
			Update("status", models.BookingStatusCancelled).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel ride bookings"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}

		services.InvalidateStats(c.Request.Context(), transportStatsKey)

		var cancelled models.Ride
		if err := db.Preload("Driver").First(&cancelled, ride.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve ride"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Ride cancelled successfully",
			"ride":    rideJSON(&cancelled),
		})
	}
}

// GetTransportStats reports ride/booking totals, cached for a short TTL
func GetTransportStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if data, ok := services.GetCachedStats(ctx, transportStatsKey); ok {
			c.Data(200, "application/json", data)
			return
		}

		var totalRides, activeRides, totalBookings int64
		if err := db.Model(&models.Ride{}).Count(&totalRides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		if err := db.Model(&models.Ride{}).
			Where("status = ? AND departure_time > ?", models.RideStatusActive, time.Now()).
			Count(&activeRides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		if err := db.Model(&models.RideBooking{}).
			Where("status = ?", models.BookingStatusConfirmed).
			Count(&totalBookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve statistics"})
			return
		}

		payload := gin.H{
			"total_rides":    totalRides,
			"active_rides":   activeRides,
			"total_bookings": totalBookings,
		}

		if data, err := json.Marshal(payload); err == nil {
			services.SetCachedStats(ctx, transportStatsKey, data)
		}

		c.JSON(200, payload)
	}
}
