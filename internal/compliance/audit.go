// Package compliance provides healthcare regulatory compliance features:
// an output guard for assistant replies, disclaimers, and an audit trail.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventResponseModified is logged when a reply is edited for safety.
	EventResponseModified AuditEventType = "compliance.response_modified"
	// EventDisclaimerSent is logged when a disclaimer is added to a message.
	EventDisclaimerSent AuditEventType = "compliance.disclaimer_sent"
)

// AuditEvent represents an immutable compliance audit record.
type AuditEvent struct {
	ID             string          `json:"id"`
	EventType      AuditEventType  `json:"event_type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	AIResponse     string          `json:"ai_response,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details.
type AuditDetails struct {
	OriginalResponse   string `json:"original_response,omitempty"`
	ModifiedResponse   string `json:"modified_response,omitempty"`
	ModificationReason string `json:"modification_reason,omitempty"`
	DisclaimerLevel    string `json:"disclaimer_level,omitempty"`
	DisclaimerText     string `json:"disclaimer_text,omitempty"`
}

// AuditService handles compliance audit logging. A nil service, or one
// without a database, silently drops events.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates an audit service, or nil when no DB is given.
func NewAuditService(db *sql.DB) *AuditService {
	if db == nil {
		return nil
	}
	return &AuditService{db: db}
}

// LogEvent records a compliance audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if s == nil || s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO compliance_audit_events (
			id, event_type, conversation_id, ai_response, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		nullString(event.ConversationID),
		nullString(event.AIResponse),
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}
	return nil
}

// LogResponseModified logs a reply edited (or flagged) for safety.
func (s *AuditService) LogResponseModified(ctx context.Context, conversationID, original, modified, reason string) error {
	details := AuditDetails{
		OriginalResponse:   original,
		ModifiedResponse:   modified,
		ModificationReason: reason,
	}
	detailsJSON, _ := json.Marshal(details)

	return s.LogEvent(ctx, AuditEvent{
		EventType:      EventResponseModified,
		ConversationID: conversationID,
		AIResponse:     modified,
		Details:        detailsJSON,
	})
}

// LogDisclaimerSent logs a disclaimer added to a message.
func (s *AuditService) LogDisclaimerSent(ctx context.Context, conversationID, level, disclaimerText string) error {
	details := AuditDetails{
		DisclaimerLevel: level,
		DisclaimerText:  disclaimerText,
	}
	detailsJSON, _ := json.Marshal(details)

	return s.LogEvent(ctx, AuditEvent{
		EventType:      EventDisclaimerSent,
		ConversationID: conversationID,
		Details:        detailsJSON,
	})
}

// QueryEvents retrieves audit events with filters.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, event_type, conversation_id, ai_response, details, created_at
		FROM compliance_audit_events
		WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.ConversationID != "" {
		query += fmt.Sprintf(" AND conversation_id = $%d", argIdx)
		args = append(args, filter.ConversationID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var convID, aiResp sql.NullString
		if err := rows.Scan(&e.ID, &e.EventType, &convID, &aiResp, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.ConversationID = convID.String
		e.AIResponse = aiResp.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	ConversationID string
	EventType      AuditEventType
	StartTime      time.Time
	EndTime        time.Time
	Limit          int
	Offset         int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
