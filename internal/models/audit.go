package models

import "time"

// AuditEvent records a security-relevant action (logins, password changes,
// account deactivations) for the admin event feed.
type AuditEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
