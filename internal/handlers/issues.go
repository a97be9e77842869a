package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const issueStatsKey = "stats:issues"

type CreateIssueInput struct {
	Category    string `json:"category" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Priority    string `json:"priority" binding:"required,oneof=Low Medium High Critical"`
	PhotoPath   string `json:"photo_path"`
}

// CreateIssue files a new facility issue
func CreateIssue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input CreateIssueInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !validIssueCategory(input.Category) {
			c.JSON(400, gin.H{"error": "Invalid category"})
			return
		}

		issue := models.Issue{
			UserID:      userId,
			Category:    input.Category,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Location:    strings.TrimSpace(input.Location),
			Priority:    models.IssuePriority(input.Priority),
			Status:      models.IssueStatusPending,
			PhotoPath:   input.PhotoPath,
		}

		if err := db.Create(&issue).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create issue"})
			return
		}

		services.InvalidateStats(c.Request.Context(), issueStatsKey)

		db.Preload("User").First(&issue, issue.ID)

		c.JSON(201, gin.H{
			"message": "Issue reported successfully",
			"issue":   issueJSON(&issue),
		})
	}
}

func validIssueCategory(category string) bool {
	for _, valid := range models.IssueCategories {
		if category == valid {
			return true
		}
	}
	return false
}

// GetIssues lists issues with optional category/status/priority filters
func GetIssues(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)

		filtered := func(tx *gorm.DB) *gorm.DB {
			if category := c.Query("category"); category != "" {
				tx = tx.Where("category = ?", category)
			}
			if status := c.Query("status"); status != "" {
				tx = tx.Where("status = ?", status)
			}
			if priority := c.Query("priority"); priority != "" {
				tx = tx.Where("priority = ?", priority)
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.Issue{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issues"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var issues []models.Issue
		if err := filtered(db.Model(&models.Issue{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&issues).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issues"})
			return
		}

		issueList := make([]gin.H, 0, len(issues))
		for i := range issues {
			issueList = append(issueList, issueJSON(&issues[i]))
		}

		c.JSON(200, gin.H{
			"issues":     issueList,
			"pagination": pagination,
		})
	}
}

// GetMyIssues lists issues filed by the caller
func GetMyIssues(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		filtered := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("user_id = ?", userId)
			if status := c.Query("status"); status != "" {
				tx = tx.Where("status = ?", status)
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.Issue{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issues"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var issues []models.Issue
		if err := filtered(db.Model(&models.Issue{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&issues).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issues"})
			return
		}

		issueList := make([]gin.H, 0, len(issues))
		for i := range issues {
			issueList = append(issueList, issueJSON(&issues[i]))
		}

		c.JSON(200, gin.H{
			"issues":     issueList,
			"pagination": pagination,
		})
	}
}

// GetIssue returns one issue
func GetIssue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		issueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid issue ID"})
			return
		}

		var issue models.Issue
		if err := db.Preload("User").First(&issue, issueID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Issue not found"})
			return
		}

		c.JSON(200, gin.H{"issue": issueJSON(&issue)})
	}
}

// UpvoteIssue bumps the upvote counter atomically
func UpvoteIssue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		issueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid issue ID"})
			return
		}

		result := db.Model(&models.Issue{}).
			Where("id = ?", issueID).
			Update("upvotes", gorm.Expr("upvotes + 1"))
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to upvote issue"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(404, gin.H{"error": "Issue not found"})
			return
		}

		var issue models.Issue
		if err := db.First(&issue, issueID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issue"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Issue upvoted successfully",
			"upvotes": issue.Upvotes,
		})
	}
}

// UpdateIssueStatus moves an issue through its workflow. Admin only.
func UpdateIssueStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		issueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid issue ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=Pending 'In Progress' Resolved Closed"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var issue models.Issue
		if err := db.First(&issue, issueID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Issue not found"})
			return
		}

		issue.Status = models.IssueStatus(input.Status)
		if err := db.Save(&issue).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update issue status"})
			return
		}

		services.InvalidateStats(c.Request.Context(), issueStatsKey)

		c.JSON(200, gin.H{
			"message": "Issue status updated successfully",
			"issue":   issueJSON(&issue),
		})
	}
}

// DeleteIssue removes an issue. Allowed for the reporter or an admin.
func DeleteIssue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		issueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid issue ID"})
			return
		}

		var issue models.Issue
		if err := db.First(&issue, issueID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Issue not found"})
			return
		}

		if issue.UserID != userId && !isAdmin {
			c.JSON(403, gin.H{"error": "Permission denied"})
			return
		}

		if err := db.Delete(&issue).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete issue"})
			return
		}

		services.InvalidateStats(c.Request.Context(), issueStatsKey)

		c.JSON(200, gin.H{"message": "Issue deleted successfully"})
	}
}

// GetIssueStats aggregates issue counts with category/priority breakdowns
func GetIssueStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if data, ok := services.GetCachedStats(ctx, issueStatsKey); ok {
			c.Data(200, "application/json", data)
			return
		}

		var total, pending, inProgress, resolved int64
		if err := db.Model(&models.Issue{}).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issue statistics"})
			return
		}
		db.Model(&models.Issue{}).Where("status = ?", models.IssueStatusPending).Count(&pending)
		db.Model(&models.Issue{}).Where("status = ?", models.IssueStatusInProgress).Count(&inProgress)
		db.Model(&models.Issue{}).Where("status = ?", models.IssueStatusResolved).Count(&resolved)

		categoryStats, err := groupCounts(db, &models.Issue{}, "category")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issue statistics"})
			return
		}
		priorityStats, err := groupCounts(db, &models.Issue{}, "priority")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve issue statistics"})
			return
		}

		payload := gin.H{
			"total_issues":       total,
			"pending_issues":     pending,
			"in_progress_issues": inProgress,
			"resolved_issues":    resolved,
			"category_stats":     categoryStats,
			"priority_stats":     priorityStats,
		}

		if data, err := json.Marshal(payload); err == nil {
			services.SetCachedStats(ctx, issueStatsKey, data)
		}

		c.JSON(200, payload)
	}
}

// groupCounts returns a label -> row count map for one column of a model
func groupCounts(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Label string
		Count int64
	}
	if err := db.Model(model).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}
