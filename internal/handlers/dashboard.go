package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDashboardStats returns the caller's personal activity counters
func GetDashboardStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		stats, err := userStats(db, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve dashboard statistics"})
			return
		}

		c.JSON(200, gin.H{"user_stats": stats})
	}
}

func userStats(db *gorm.DB, userId uint) (gin.H, error) {
	var issues, pendingIssues, resolvedIssues int64
	var orders, feedback, lostFound, ridesOffered, ridesBooked int64

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&issues, db.Model(&models.Issue{}).Where("user_id = ?", userId)},
		{&pendingIssues, db.Model(&models.Issue{}).Where("user_id = ? AND status = ?", userId, models.IssueStatusPending)},
		{&resolvedIssues, db.Model(&models.Issue{}).Where("user_id = ? AND status = ?", userId, models.IssueStatusResolved)},
		{&orders, db.Model(&models.Order{}).Where("user_id = ?", userId)},
		{&feedback, db.Model(&models.Feedback{}).Where("user_id = ?", userId)},
		{&lostFound, db.Model(&models.LostFoundItem{}).Where("user_id = ?", userId)},
		{&ridesOffered, db.Model(&models.Ride{}).Where("driver_id = ?", userId)},
		{&ridesBooked, db.Model(&models.RideBooking{}).Where("passenger_id = ? AND status = ?", userId, models.BookingStatusConfirmed)},
	}
	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return nil, err
		}
	}

	return gin.H{
		"total_issues":     issues,
		"pending_issues":   pendingIssues,
		"resolved_issues":  resolvedIssues,
		"total_orders":     orders,
		"total_feedback":   feedback,
		"lost_found_items": lostFound,
		"rides_offered":    ridesOffered,
		"rides_booked":     ridesBooked,
	}, nil
}

type activityEntry struct {
	payload   gin.H
	createdAt time.Time
}

// GetRecentActivity merges the caller's latest actions across every portal
// module into a single feed, newest first.
func GetRecentActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		limit := 10
		if l := c.Query("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		entries, err := recentActivity(db, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve recent activity"})
			return
		}

		if len(entries) > limit {
			entries = entries[:limit]
		}

		activities := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			activities = append(activities, entry.payload)
		}

		c.JSON(200, gin.H{"activities": activities})
	}
}

func recentActivity(db *gorm.DB, userId uint) ([]activityEntry, error) {
	var entries []activityEntry

	var issues []models.Issue
	if err := db.Where("user_id = ?", userId).Order("created_at DESC").Limit(5).Find(&issues).Error; err != nil {
		return nil, err
	}
	for _, issue := range issues {
		entries = append(entries, activityEntry{
			createdAt: issue.CreatedAt,
			payload: gin.H{
				"type":        "issue",
				"id":          issue.ID,
				"title":       fmt.Sprintf("Reported issue: %s", issue.Title),
				"description": truncate(issue.Description, 100),
				"status":      issue.Status,
				"priority":    issue.Priority,
				"created_at":  issue.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	var orders []models.Order
	if err := db.Where("user_id = ?", userId).Order("created_at DESC").Limit(5).Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, order := range orders {
		entries = append(entries, activityEntry{
			createdAt: order.CreatedAt,
			payload: gin.H{
				"type":        "order",
				"id":          order.ID,
				"title":       "Food order placed",
				"description": fmt.Sprintf("Total: %.2f", order.TotalAmount),
				"status":      order.Status,
				"created_at":  order.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	var feedbackList []models.Feedback
	if err := db.Where("user_id = ?", userId).Order("created_at DESC").Limit(3).Find(&feedbackList).Error; err != nil {
		return nil, err
	}
	for _, fb := range feedbackList {
		entries = append(entries, activityEntry{
			createdAt: fb.CreatedAt,
			payload: gin.H{
				"type":        "feedback",
				"id":          fb.ID,
				"title":       fmt.Sprintf("Feedback submitted for %s", fb.Category),
				"description": truncate(fb.Text, 100),
				"rating":      fb.Rating,
				"created_at":  fb.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	var items []models.LostFoundItem
	if err := db.Where("user_id = ?", userId).Order("created_at DESC").Limit(3).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		entries = append(entries, activityEntry{
			createdAt: item.CreatedAt,
			payload: gin.H{
				"type":        "lost_found",
				"id":          item.ID,
				"title":       fmt.Sprintf("%s item: %s", item.Type, item.Name),
				"description": truncate(item.Description, 100),
				"status":      item.Status,
				"created_at":  item.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	var rides []models.Ride
	if err := db.Where("driver_id = ?", userId).Order("created_at DESC").Limit(3).Find(&rides).Error; err != nil {
		return nil, err
	}
	for _, ride := range rides {
		entries = append(entries, activityEntry{
			createdAt: ride.CreatedAt,
			payload: gin.H{
				"type":            "ride",
				"id":              ride.ID,
				"title":           fmt.Sprintf("Ride offered: %s → %s", ride.FromLocation, ride.ToLocation),
				"description":     fmt.Sprintf("Departure: %s", ride.DepartureTime.UTC().Format("2006-01-02 15:04")),
				"status":          ride.Status,
				"available_seats": ride.AvailableSeats,
				"created_at":      ride.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	return entries, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// GetDashboardOverview bundles profile, stats, recent activity and the
// caller's upcoming rides (driving or riding) into one response.
func GetDashboardOverview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		stats, err := userStats(db, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve dashboard overview"})
			return
		}

		entries, err := recentActivity(db, userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve dashboard overview"})
			return
		}
		if len(entries) > 5 {
			entries = entries[:5]
		}
		activities := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			activities = append(activities, entry.payload)
		}

		type upcoming struct {
			kind string
			ride models.Ride
		}
		var upcomingRides []upcoming

		var driving []models.Ride
		if err := db.Where("driver_id = ? AND status = ? AND departure_time > ?",
			userId, models.RideStatusActive, time.Now()).
			Order("departure_time ASC").
			Limit(3).
			Preload("Driver").
			Find(&driving).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve dashboard overview"})
			return
		}
		for _, ride := range driving {
			upcomingRides = append(upcomingRides, upcoming{kind: "driving", ride: ride})
		}

		var booked []models.Ride
		if err := db.Model(&models.Ride{}).
			Joins("JOIN ride_bookings ON ride_bookings.ride_id = rides.id").
			Where("ride_bookings.passenger_id = ? AND ride_bookings.status = ?", userId, models.BookingStatusConfirmed).
			Where("rides.status = ? AND rides.departure_time > ?", models.RideStatusActive, time.Now()).
			Order("rides.departure_time ASC").
			Limit(3).
			Preload("Driver").
			Find(&booked).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve dashboard overview"})
			return
		}
		for _, ride := range booked {
			upcomingRides = append(upcomingRides, upcoming{kind: "passenger", ride: ride})
		}

		sort.Slice(upcomingRides, func(i, j int) bool {
			return upcomingRides[i].ride.DepartureTime.Before(upcomingRides[j].ride.DepartureTime)
		})
		if len(upcomingRides) > 5 {
			upcomingRides = upcomingRides[:5]
		}

		rideList := make([]gin.H, 0, len(upcomingRides))
		for i := range upcomingRides {
			rideList = append(rideList, gin.H{
				"type": upcomingRides[i].kind,
				"ride": rideJSON(&upcomingRides[i].ride),
			})
		}

		c.JSON(200, gin.H{
			"user":              userJSON(&user),
			"stats":             stats,
			"recent_activities": activities,
			"upcoming_rides":    rideList,
		})
	}
}

// GetAdminStats reports system-wide totals and the last week's activity.
// Admin only.
func GetAdminStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var totalUsers, totalIssues, pendingIssues, totalOrders int64
		var totalFeedback, totalLFItems, totalRides, activeRides int64

		db.Model(&models.User{}).Count(&totalUsers)
		db.Model(&models.Issue{}).Count(&totalIssues)
		db.Model(&models.Issue{}).Where("status = ?", models.IssueStatusPending).Count(&pendingIssues)
		db.Model(&models.Order{}).Count(&totalOrders)
		db.Model(&models.Feedback{}).Count(&totalFeedback)
		db.Model(&models.LostFoundItem{}).Count(&totalLFItems)
		db.Model(&models.Ride{}).Count(&totalRides)
		db.Model(&models.Ride{}).
			Where("status = ? AND departure_time > ?", models.RideStatusActive, time.Now()).
			Count(&activeRides)

		weekAgo := time.Now().AddDate(0, 0, -7)
		var newUsers, newIssues, newOrders int64
		db.Model(&models.User{}).Where("created_at >= ?", weekAgo).Count(&newUsers)
		db.Model(&models.Issue{}).Where("created_at >= ?", weekAgo).Count(&newIssues)
		db.Model(&models.Order{}).Where("created_at >= ?", weekAgo).Count(&newOrders)

		issueCategories, err := groupCounts(db, &models.Issue{}, "category")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve admin statistics"})
			return
		}

		var ratingRows []struct {
			Rating int
			Count  int64
		}
		if err := db.Model(&models.Feedback{}).
			Select("rating, COUNT(*) AS count").
			Group("rating").
			Scan(&ratingRows).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve admin statistics"})
			return
		}
		feedbackRatings := make(map[string]int64, len(ratingRows))
		for _, row := range ratingRows {
			feedbackRatings[fmt.Sprintf("%d_star", row.Rating)] = row.Count
		}

		c.JSON(200, gin.H{
			"system_stats": gin.H{
				"total_users":    totalUsers,
				"total_issues":   totalIssues,
				"pending_issues": pendingIssues,
				"total_orders":   totalOrders,
				"total_feedback": totalFeedback,
				"total_lf_items": totalLFItems,
				"total_rides":    totalRides,
				"active_rides":   activeRides,
			},
			"weekly_stats": gin.H{
				"new_users":  newUsers,
				"new_issues": newIssues,
				"new_orders": newOrders,
			},
			"breakdowns": gin.H{
				"issue_categories": issueCategories,
				"feedback_ratings": feedbackRatings,
			},
		})
	}
}
