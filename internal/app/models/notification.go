package models

import "time"

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationJobApproved NotificationType = "job_approved"
	NotificationJobRejected NotificationType = "job_rejected"
	NotificationGeneral     NotificationType = "general"
)

// Notification defines the notification model based on the 'notifications' table
type Notification struct {
	ID           int64            `json:"id" db:"id"`
	UserID       int64            `json:"user_id" db:"user_id"`
	Type         NotificationType `json:"type" db:"type"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	RelatedJobID *int64           `json:"related_job_id,omitempty" db:"related_job_id"`
	IsRead       bool             `json:"is_read" db:"is_read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// NewNotification carries the fields of a notification insert
type NewNotification struct {
	UserID       int64
	Type         NotificationType
	Title        string
	Message      string
	RelatedJobID *int64
}
