package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetNotifications = "notifications retrieved successfully"
	MessageSuccessMarkAsRead       = "notification marked as read"

	MessageFailedGetNotifications = "failed to retrieve notifications"
	MessageFailedMarkAsRead       = "failed to mark notification as read"

	ErrNotificationNotFound = errors.New("notification not found")
)

type (
	NotificationResponse struct {
		ID        string            `json:"id"`
		UserID    string            `json:"user_id"`
		Title     string            `json:"title"`
		Body      string            `json:"body"`
		Data      map[string]string `json:"data,omitempty"`
		ReadAt    *time.Time        `json:"read_at,omitempty"`
		CreatedAt time.Time         `json:"created_at"`
	}
)
