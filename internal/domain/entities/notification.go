package entities

import "time"

// NotificationKind distinguishes success toasts from error toasts
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a user-visible message about the outcome of an operation
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
