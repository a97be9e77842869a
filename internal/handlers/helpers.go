package handlers

import (
	"time"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func pageParams(c *gin.Context) (page, perPage int) {
	return utils.ParsePageParams(c.Query("page"), c.Query("per_page"))
}

func paginationJSON(page, perPage int, total int64) utils.Pagination {
	return utils.NewPagination(page, perPage, total)
}

func userJSON(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"is_admin":   user.IsAdmin,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func rideJSON(ride *models.Ride) gin.H {
	passengers := make([]string, 0, len(ride.Bookings))
	for _, b := range ride.Bookings {
		if b.Status == models.BookingStatusConfirmed && b.Passenger != nil {
			passengers = append(passengers, b.Passenger.Username)
		}
	}

	resp := gin.H{
		"id":               ride.ID,
		"driver_id":        ride.DriverID,
		"from_location":    ride.FromLocation,
		"to_location":      ride.ToLocation,
		"departure_time":   ride.DepartureTime.UTC().Format(time.RFC3339),
		"total_seats":      ride.TotalSeats,
		"available_seats":  ride.AvailableSeats,
		"price_per_person": ride.PricePerPerson,
		"status":           ride.Status,
		"created_at":       ride.CreatedAt.UTC().Format(time.RFC3339),
		"passengers":       passengers,
	}
	if ride.Driver != nil {
		resp["driver_name"] = ride.Driver.Username
	}
	return resp
}

func bookingJSON(booking *models.RideBooking) gin.H {
	resp := gin.H{
		"id":           booking.ID,
		"ride_id":      booking.RideID,
		"passenger_id": booking.PassengerID,
		"status":       booking.Status,
		"booked_at":    booking.CreatedAt.UTC().Format(time.RFC3339),
	}
	if booking.Passenger != nil {
		resp["passenger_name"] = booking.Passenger.Username
	}
	return resp
}

func issueJSON(issue *models.Issue) gin.H {
	resp := gin.H{
		"id":          issue.ID,
		"user_id":     issue.UserID,
		"category":    issue.Category,
		"title":       issue.Title,
		"description": issue.Description,
		"location":    issue.Location,
		"priority":    issue.Priority,
		"status":      issue.Status,
		"upvotes":     issue.Upvotes,
		"photo_path":  issue.PhotoPath,
		"created_at":  issue.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  issue.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if issue.User != nil {
		resp["username"] = issue.User.Username
	}
	return resp
}

func orderJSON(order *models.Order) gin.H {
	items := make([]gin.H, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, gin.H{
			"id":        item.ID,
			"item_name": item.ItemName,
			"quantity":  item.Quantity,
			"price":     item.Price,
			"subtotal":  item.Price * float64(item.Quantity),
		})
	}

	resp := gin.H{
		"id":           order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
		"created_at":   order.CreatedAt.UTC().Format(time.RFC3339),
		"items":        items,
	}
	if order.User != nil {
		resp["username"] = order.User.Username
	}
	return resp
}

func feedbackJSON(fb *models.Feedback) gin.H {
	resp := gin.H{
		"id":         fb.ID,
		"user_id":    fb.UserID,
		"category":   fb.Category,
		"rating":     fb.Rating,
		"text":       fb.Text,
		"created_at": fb.CreatedAt.UTC().Format(time.RFC3339),
	}
	if fb.User != nil {
		resp["username"] = fb.User.Username
	}
	return resp
}

func lostFoundItemJSON(item *models.LostFoundItem) gin.H {
	resp := gin.H{
		"id":          item.ID,
		"user_id":     item.UserID,
		"type":        item.Type,
		"name":        item.Name,
		"description": item.Description,
		"location":    item.Location,
		"contact":     item.Contact,
		"status":      item.Status,
		"created_at":  item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.User != nil {
		resp["username"] = item.User.Username
	}
	return resp
}
