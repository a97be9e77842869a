package handlers

import (
	"fmt"
	"strconv"

	"github.com/campuslink/portal-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MenuItem is a cafeteria menu entry. The menu is static for now; orders
// snapshot the price at purchase time so menu edits don't rewrite history.
type MenuItem struct {
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

var menuItems = map[string]MenuItem{
	"Chicken Burger":   {Price: 40, Category: "Main Course"},
	"Margherita Pizza": {Price: 120, Category: "Main Course"},
	"Club Sandwich":    {Price: 40, Category: "Main Course"},
	"Coffee":           {Price: 30, Category: "Beverages"},
	"Tea":              {Price: 20, Category: "Beverages"},
}

// GetMenu returns the cafeteria menu
func GetMenu() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"menu": menuItems})
	}
}

type OrderItemInput struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates an order with its items in one transaction. The total
// is computed server-side from the menu.
func PlaceOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input PlaceOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var totalAmount float64
		orderItems := make([]models.OrderItem, 0, len(input.Items))

		for _, item := range input.Items {
			menuItem, ok := menuItems[item.Name]
			if !ok {
				c.JSON(400, gin.H{"error": fmt.Sprintf("Invalid item: %s", item.Name)})
				return
			}

			quantity := item.Quantity
			if quantity == 0 {
				quantity = 1
			}
			if quantity < 0 {
				c.JSON(400, gin.H{"error": "Quantity must be greater than 0"})
				return
			}

			totalAmount += menuItem.Price * float64(quantity)
			orderItems = append(orderItems, models.OrderItem{
				ItemName: item.Name,
				Quantity: quantity,
				Price:    menuItem.Price,
			})
		}

		order := models.Order{
			UserID:      userId,
			TotalAmount: totalAmount,
			Status:      models.OrderStatusPending,
			Items:       orderItems,
		}

		// gorm persists the order and its items as one insert batch inside a
		// transaction, so a failed item insert leaves no orphan order row.
		if err := db.Create(&order).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to place order"})
			return
		}

		db.Preload("User").Preload("Items").First(&order, order.ID)

		c.JSON(201, gin.H{
			"message": "Order placed successfully",
			"order":   orderJSON(&order),
		})
	}
}

// GetUserOrders lists the caller's orders, newest first
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		page, perPage := pageParams(c)

		var total int64
		if err := db.Model(&models.Order{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve orders"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var orders []models.Order
		if err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Preload("Items").
			Find(&orders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve orders"})
			return
		}

		orderList := make([]gin.H, 0, len(orders))
		for i := range orders {
			orderList = append(orderList, orderJSON(&orders[i]))
		}

		c.JSON(200, gin.H{
			"orders":     orderList,
			"pagination": pagination,
		})
	}
}

// GetOrder returns one of the caller's orders
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.Where("id = ? AND user_id = ?", orderID, userId).
			Preload("User").
			Preload("Items").
			First(&order).Error; err != nil {
			c.JSON(404, gin.H{"error": "Order not found"})
			return
		}

		c.JSON(200, gin.H{"order": orderJSON(&order)})
	}
}

// CancelOrder cancels one of the caller's orders while it is still pending
func CancelOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.Where("id = ? AND user_id = ?", orderID, userId).First(&order).Error; err != nil {
			c.JSON(404, gin.H{"error": "Order not found"})
			return
		}

		if order.Status != models.OrderStatusPending {
			c.JSON(400, gin.H{"error": "Cannot cancel order that is not pending"})
			return
		}

		order.Status = models.OrderStatusCancelled
		if err := db.Save(&order).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel order"})
			return
		}

		db.Preload("User").Preload("Items").First(&order, order.ID)

		c.JSON(200, gin.H{
			"message": "Order cancelled successfully",
			"order":   orderJSON(&order),
		})
	}
}

// GetAllOrders lists every order, optionally filtered by status. Admin only.
func GetAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage := pageParams(c)

		filtered := func(tx *gorm.DB) *gorm.DB {
			if status := c.Query("status"); status != "" {
				tx = tx.Where("status = ?", status)
			}
			return tx
		}

		var total int64
		if err := filtered(db.Model(&models.Order{})).Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve orders"})
			return
		}

		pagination := paginationJSON(page, perPage, total)

		var orders []models.Order
		if err := filtered(db.Model(&models.Order{})).
			Order("created_at DESC").
			Limit(perPage).
			Offset(pagination.Offset()).
			Preload("User").
			Preload("Items").
			Find(&orders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to retrieve orders"})
			return
		}

		orderList := make([]gin.H, 0, len(orders))
		for i := range orders {
			orderList = append(orderList, orderJSON(&orders[i]))
		}

		c.JSON(200, gin.H{
			"orders":     orderList,
			"pagination": pagination,
		})
	}
}

// UpdateOrderStatus moves an order through the kitchen workflow. Admin only.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid order ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=Pending Preparing Ready Completed Cancelled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.First(&order, orderID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Order not found"})
			return
		}

		order.Status = models.OrderStatus(input.Status)
		if err := db.Save(&order).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update order status"})
			return
		}

		db.Preload("User").Preload("Items").First(&order, order.ID)

		c.JSON(200, gin.H{
			"message": "Order status updated successfully",
			"order":   orderJSON(&order),
		})
	}
}
