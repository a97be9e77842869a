package models

import (
	"gorm.io/gorm"
)

type LostFoundType string

const (
	LostFoundTypeLost  LostFoundType = "lost"
	LostFoundTypeFound LostFoundType = "found"
)

type LostFoundStatus string

const (
	LostFoundStatusActive   LostFoundStatus = "Active"
	LostFoundStatusResolved LostFoundStatus = "Resolved"
)

type LostFoundItem struct {
	gorm.Model
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	User        *User           `json:"user,omitempty"`
	Type        LostFoundType   `json:"type" gorm:"not null"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Location    string          `json:"location" gorm:"not null"`
	Contact     string          `json:"contact" gorm:"not null"`
	Status      LostFoundStatus `json:"status" gorm:"not null;default:'Active'"`
}

func (LostFoundItem) TableName() string {
	return "lost_found_items"
}
