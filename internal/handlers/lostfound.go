package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/campuslink/portal-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const lostFoundStatsKey = "stats:lostfound"

type CreateLostFoundInput struct {
	Type        string `json:"type" binding:"required,oneof=lost found"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Contact     string `json:"contact" binding:"required"`
}

// CreateLostFoundItem reports a lost or found item
func CreateLostFoundItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input CreateLostFoundInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		item := models.LostFoundItem{
			UserID:      userId,
			Type:        models.LostFoundType(input.Type),
			Name:        strings.TrimSpace(input.Name),
			Description: strings.TrimSpace(input.Description),
			Location:    strings.TrimSpace(input.Location),
			Contact:     strings.TrimSpace(input.Contact),
			Status:      models.LostFoundStatusActive,
		}

		if err := db.Create(&item).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create item"})
			return
		}

		services.InvalidateStats(c.Request.Context(), lostFoundStatsKey)

		db.Preload("User").First(&item, item.ID)

		caser := strings.ToUpper(input.Type[:1]) + input.Type[1:]
		c.JSON(201, gin.H{
			"message": fmt.Sprintf("%s item reported successfully", caser),
			"item":    lostFoundItemJSON(&item),
		})
	}
}

// GetLostFoundItems lists items with type/status/search filters
func GetLostFoundItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)

		status := c.DefaultQuery("status", string(models.LostFoundStatusActive))

		filtered := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("status = ?", status)
			if itemType := c.Query("type"); itemType == "lost" || itemType == "found" {
				tx = tx.Where("type = ?", itemType)
			}
			if search := c.Query("search"); search != "" {
				pattern := "%" + strings.ToLower(search) + "%"
				tx = tx.Where(
					"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
					pattern, pattern, pattern)
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.LostFoundItem{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve items"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var items []models.LostFoundItem
		if err := filtered(db.Model(&models.LostFoundItem{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&items).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve items"})
			return
		}

		itemList := make([]gin.H, 0, len(items))
		for i := range items {
			itemList = append(itemList, lostFoundItemJSON(&items[i]))
		}

		c.JSON(200, gin.H{
			"items":      itemList,
			"pagination": pagination,
		})
	}
}

// GetMyLostFoundItems lists items reported by the caller
func GetMyLostFoundItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		filtered := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("user_id = ?", userId)
			if itemType := c.Query("type"); itemType == "lost" || itemType == "found" {
				tx = tx.Where("type = ?", itemType)
			}
			if status := c.Query("status"); status != "" {
				tx = tx.Where("status = ?", status)
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.LostFoundItem{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve items"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var items []models.LostFoundItem
		if err := filtered(db.Model(&models.LostFoundItem{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Find(&items).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve items"})
			return
		}

		itemList := make([]gin.H, 0, len(items))
		for i := range items {
			itemList = append(itemList, lostFoundItemJSON(&items[i]))
		}

		c.JSON(200, gin.H{
			"items":      itemList,
			"pagination": pagination,
		})
	}
}

// GetLostFoundItem returns one item
func GetLostFoundItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid item ID"})
			return
		}

		var item models.LostFoundItem
		if err := db.Preload("User").First(&item, itemID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Item not found"})
			return
		}

		c.JSON(200, gin.H{"item": lostFoundItemJSON(&item)})
	}
}

// UpdateLostFoundItem edits an item's details. Owner only.
func UpdateLostFoundItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid item ID"})
			return
		}

		var item models.LostFoundItem
		if err := db.Where("id = ? AND user_id = ?", itemID, userId).First(&item).Error; err != nil {
			c.JSON(404, gin.H{"error": "Item not found or access denied"})
			return
		}

		var input struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Location    string `json:"location"`
			Contact     string `json:"contact"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Name != "" {
			item.Name = strings.TrimSpace(input.Name)
		}
		if input.Description != "" {
			item.Description = strings.TrimSpace(input.Description)
		}
		if input.Location != "" {
			item.Location = strings.TrimSpace(input.Location)
		}
		if input.Contact != "" {
			item.Contact = strings.TrimSpace(input.Contact)
		}

		if err := db.Save(&item).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update item"})
			return
		}

		db.Preload("User").First(&item, item.ID)

		c.JSON(200, gin.H{
			"message": "Item updated successfully",
			"item":    lostFoundItemJSON(&item),
		})
	}
}

// ResolveLostFoundItem marks an item resolved. Owner or admin.
func ResolveLostFoundItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid item ID"})
			return
		}

		var item models.LostFoundItem
		if err := db.First(&item, itemID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Item not found"})
			return
		}

		if item.UserID != userId && !isAdmin {
			c.JSON(403, gin.H{"error": "Permission denied"})
			return
		}

		item.Status = models.LostFoundStatusResolved
		if err := db.Save(&item).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to resolve item"})
			return
		}

		services.InvalidateStats(c.Request.Context(), lostFoundStatsKey)

		db.Preload("User").First(&item, item.ID)

		c.JSON(200, gin.H{
			"message": "Item marked as resolved",
			"item":    lostFoundItemJSON(&item),
		})
	}
}

// DeleteLostFoundItem removes an item. Owner or admin.
func DeleteLostFoundItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		isAdmin := c.GetBool("isAdmin")

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid item ID"})
			return
		}

		var item models.LostFoundItem
		if err := db.First(&item, itemID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Item not found"})
			return
		}

		if item.UserID != userId && !isAdmin {
			c.JSON(403, gin.H{"error": "Permission denied"})
			return
		}

		if err := db.Delete(&item).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete item"})
			return
		}

		services.InvalidateStats(c.Request.Context(), lostFoundStatsKey)

		c.JSON(200, gin.H{"message": "Item deleted successfully"})
	}
}

// GetLostFoundStats aggregates item counts
func GetLostFoundStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if data, ok := services.GetCachedStats(ctx, lostFoundStatsKey); ok {
			c.Data(200, "application/json", data)
			return
		}

		var total, active, resolved, lost, found int64
		if err := db.Model(&models.LostFoundItem{}).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve statistics"})
			return
		}
		db.Model(&models.LostFoundItem{}).Where("status = ?", models.LostFoundStatusActive).Count(&active)
		db.Model(&models.LostFoundItem{}).Where("status = ?", models.LostFoundStatusResolved).Count(&resolved)
		db.Model(&models.LostFoundItem{}).
			Where("type = ? AND status = ?", models.LostFoundTypeLost, models.LostFoundStatusActive).
			Count(&lost)
		db.Model(&models.LostFoundItem{}).
			Where("type = ? AND status = ?", models.LostFoundTypeFound, models.LostFoundStatusActive).
			Count(&found)

		payload := gin.H{
			"total_items":    total,
			"active_items":   active,
			"resolved_items": resolved,
			"lost_items":     lost,
			"found_items":    found,
		}

		if data, err := json.Marshal(payload); err == nil {
			services.SetCachedStats(ctx, lostFoundStatsKey, data)
		}

		c.JSON(200, payload)
	}
}
