package models

import (
	"time"
)

type AuditEventType string

const (
	EventUserCreated       AuditEventType = "user_created"
	EventUserUpdated       AuditEventType = "user_updated"
	EventUserDeleted       AuditEventType = "user_deleted"
	EventUserPasswordReset AuditEventType = "user_password_reset" //nolint:gosec
)

type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
)

// AuditEvent is an immutable record of a lifecycle outcome. Produced
// once, never mutated, never read back by this service.
type AuditEvent struct {
	ID           string                 `json:"event_id"`   //nolint:tagliatelle
	Type         AuditEventType         `json:"event_type"` //nolint:tagliatelle
	Severity     AuditSeverity          `json:"severity"`
	ActingUserID int                    `json:"acting_user_id"` //nolint:tagliatelle
	Timestamp    time.Time              `json:"timestamp"`
	Details      map[string]interface{} `json:"details"`
}
