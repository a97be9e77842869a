package models

import (
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

type Order struct {
	gorm.Model
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	User        *User       `json:"user,omitempty"`
	TotalAmount float64     `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status      OrderStatus `json:"status" gorm:"not null;default:'Pending'"`
	Items       []OrderItem `json:"items"`
}

type OrderItem struct {
	gorm.Model
	OrderID  uint    `json:"-" gorm:"not null;index"`
	ItemName string  `json:"item_name" gorm:"not null"`
	Quantity int     `json:"quantity" gorm:"not null"`
	Price    float64 `json:"price" gorm:"type:decimal(10,2);not null"`
}
