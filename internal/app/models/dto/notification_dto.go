package dto

import "github.com/yigit/jobboard/internal/app/models"

// NotificationListQuery filters the notification inbox
type NotificationListQuery struct {
	PageQuery
	UnreadOnly bool `form:"unread_only"`
}

// NotificationListResponse is a page of notifications plus the unread badge count
type NotificationListResponse struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int64                 `json:"unread_count"`
	Pagination  PaginationInfo        `json:"pagination"`
}

// UnreadCountResponse carries the unread badge count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// BulkUpdateResponse reports how many rows an action touched
type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}
