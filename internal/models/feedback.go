package models

import (
	"gorm.io/gorm"
)

var FeedbackCategories = []string{
	"Academic", "Infrastructure", "Cafeteria", "Hostel", "Transport", "Other",
}

type Feedback struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"not null;index"`
	User     *User  `json:"user,omitempty"`
	Category string `json:"category" gorm:"not null"`
	Rating   int    `json:"rating" gorm:"not null"`
	Text     string `json:"text" gorm:"type:text;not null"`
}

func (Feedback) TableName() string {
	return "feedback"
}
