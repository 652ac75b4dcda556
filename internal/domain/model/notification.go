package model

import "time"

type NotificationType string

const (
	NotificationBadge      NotificationType = "badge"
	NotificationEvaluation NotificationType = "evaluation"
	NotificationChallenge  NotificationType = "challenge"
	NotificationSystem     NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
