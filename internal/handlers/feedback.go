package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const feedbackStatsKey = "stats:feedback"

type SubmitFeedbackInput struct {
	Category string `json:"category" binding:"required"`
	Rating   *int   `json:"rating" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

// SubmitFeedback records a rating and comment for a campus service
func SubmitFeedback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input SubmitFeedbackInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !validFeedbackCategory(input.Category) {
			c.JSON(400, gin.H{"error": "Invalid category"})
			return
		}

		if *input.Rating < 1 || *input.Rating > 5 {
			c.JSON(400, gin.H{"error": "Rating must be between 1 and 5"})
			return
		}

		text := strings.TrimSpace(input.Text)
		if text == "" {
			c.JSON(400, gin.H{"error": "Feedback text cannot be empty"})
			return
		}

		feedback := models.Feedback{
			UserID:   userId,
			Category: input.Category,
			Rating:   *input.Rating,
			Text:     text,
		}

		if err := db.Create(&feedback).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to submit feedback"})
			return
		}

		services.InvalidateStats(c.Request.Context(), feedbackStatsKey)

		db.Preload("User").First(&feedback, feedback.ID)

		c.JSON(201, gin.H{
			"message":  "Feedback submitted successfully",
			"feedback": feedbackJSON(&feedback),
		})
	}
}

func validFeedbackCategory(category string) bool {
	for _, valid := range models.FeedbackCategories {
		if category == valid {
			return true
		}
	}
	return false
}

// GetFeedbackList lists feedback with optional category/rating filters
func GetFeedbackList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)

		filtered := func(tx *gorm.DB) *gorm.DB {
			if category := c.Query("category"); category != "" {
				tx = tx.Where("category = ?", category)
			}
			if ratingStr := c.Query("rating"); ratingStr != "" {
				if rating, err := strconv.Atoi(ratingStr); err == nil {
					tx = tx.Where("rating = ?", rating)
				}
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.Feedback{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var feedbackList []models.Feedback
		if err := filtered(db.Model(&models.Feedback{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&feedbackList).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback"})
			return
		}

		entries := make([]gin.H, 0, len(feedbackList))
		for i := range feedbackList {
			entries = append(entries, feedbackJSON(&feedbackList[i]))
		}

		c.JSON(200, gin.H{
			"feedback":   entries,
			"pagination": pagination,
		})
	}
}

// GetMyFeedback lists feedback submitted by the caller
func GetMyFeedback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		var total int64
		if err := db.Model(&models.Feedback{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var feedbackList []models.Feedback
		if err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&feedbackList).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback"})
			return
		}

		entries := make([]gin.H, 0, len(feedbackList))
		for i := range feedbackList {
			entries = append(entries, feedbackJSON(&feedbackList[i]))
		}

		c.JSON(200, gin.H{
			"feedback":   entries,
			"pagination": pagination,
		})
	}
}

// DeleteFeedback removes an entry. Author or admin.
func DeleteFeedback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid feedback ID"})
			return
		}

		var feedback models.Feedback
		if err := db.First(&feedback, feedbackID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Feedback not found"})
			return
		}

		if feedback.UserID != userId && !isAdmin {
			c.JSON(403, gin.H{"error": "Permission denied"})
			return
		}

		if err := db.Delete(&feedback).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete feedback"})
			return
		}

		services.InvalidateStats(c.Request.Context(), feedbackStatsKey)

		c.JSON(200, gin.H{"message": "Feedback deleted successfully"})
	}
}

// GetFeedbackCategories returns the accepted category labels
func GetFeedbackCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"categories": models.FeedbackCategories})
	}
}

// GetFeedbackStats aggregates rating breakdowns and per-category averages
func GetFeedbackStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if data, ok := services.GetCachedStats(ctx, feedbackStatsKey); ok {
			c.Data(200, "application/json", data)
			return
		}

		var total int64
		if err := db.Model(&models.Feedback{}).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback statistics"})
			return
		}

		categoryStats, err := groupCounts(db, &models.Feedback{}, "category")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback statistics"})
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
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback statistics"})
			return
		}
		ratingStats := make(map[string]int64, len(ratingRows))
		for _, row := range ratingRows {
			ratingStats[fmt.Sprintf("%d_star", row.Rating)] = row.Count
		}

		var avgRows []struct {
			Category  string
			AvgRating float64
		}
		if err := db.Model(&models.Feedback{}).
			Select("category, AVG(rating) AS avg_rating").
			Group("category").
			Scan(&avgRows).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve feedback statistics"})
			return
		}
		categoryAvgRatings := make(map[string]float64, len(avgRows))
		for _, row := range avgRows {
			categoryAvgRatings[row.Category] = roundTo2(row.AvgRating)
		}

		var overallAvg float64
		if total > 0 {
			row := db.Model(&models.Feedback{}).Select("AVG(rating)").Row()
			if err := row.Scan(&overallAvg); err != nil {
				c.JSON(500, gin.H{"error": "Failed to retrieve feedback statistics"})
				return
			}
		}

		payload := gin.H{
			"total_feedback":       total,
			"category_stats":       categoryStats,
			"rating_stats":         ratingStats,
			"category_avg_ratings": categoryAvgRatings,
			"overall_avg_rating":   roundTo2(overallAvg),
		}

		if data, err := json.Marshal(payload); err == nil {
			services.SetCachedStats(ctx, feedbackStatsKey, data)
		}

		c.JSON(200, payload)
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
