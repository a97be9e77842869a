package models

import (
	"gorm.io/gorm"
)

type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "Low"
	IssuePriorityMedium   IssuePriority = "Medium"
	IssuePriorityHigh     IssuePriority = "High"
	IssuePriorityCritical IssuePriority = "Critical"
)

type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "Pending"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusResolved   IssueStatus = "Resolved"
	IssueStatusClosed     IssueStatus = "Closed"
)

var IssueCategories = []string{
	"Infrastructure", "Electrical", "Plumbing", "Cleaning", "Security", "Internet", "Other",
}

type Issue struct {
	gorm.Model
	UserID      uint          `json:"user_id" gorm:"not null;index"`
	User        *User         `json:"user,omitempty"`
	Category    string        `json:"category" gorm:"not null"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Location    string        `json:"location" gorm:"not null"`
	Priority    IssuePriority `json:"priority" gorm:"not null"`
	Status      IssueStatus   `json:"status" gorm:"not null;default:'Pending'"`
	Upvotes     int           `json:"upvotes" gorm:"not null;default:0"`
	PhotoPath   string        `json:"photo_path"`
}
