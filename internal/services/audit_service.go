package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/avieira/tourbase-be/internal/models"
)

// Audit event levels.
const (
	AuditInfo    = "info"
	AuditWarning = "warning"
)

// AuditServiceProvider defines the interface for the security audit trail.
type AuditServiceProvider interface {
	Record(eventType, level, message string, userID *string) error
	GetRecent(limit int) ([]models.AuditEvent, error)
}

// AuditService appends security-relevant events to the audit log.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// Record logs a new audit event.
func (s *AuditService) Record(eventType, level, message string, userID *string) error {
	event := models.AuditEvent{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	stmt, err := s.db.Prepare("INSERT INTO audit_events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.UserID)
	return err
}

// GetRecent retrieves the most recent audit events.
func (s *AuditService) GetRecent(limit int) ([]models.AuditEvent, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, user_id, created_at FROM audit_events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.Level, &e.Message, &e.UserID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
