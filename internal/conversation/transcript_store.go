package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TranscriptStore persists conversation transcripts to PostgreSQL for audit
// and staff review. Redis holds the live context; this is the durable record.
// A nil TranscriptStore disables persistence, so callers never nil-check.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore creates a transcript store, or nil when no DB is given.
func NewTranscriptStore(db *sql.DB) *TranscriptStore {
	if db == nil {
		return nil
	}
	return &TranscriptStore{db: db}
}

// TranscriptMessage is one persisted message.
type TranscriptMessage struct {
	ID             uuid.UUID
	ConversationID string
	Role           string // "patient" or "assistant"
	Content        string
	State          string // dialogue state after the message
	CreatedAt      time.Time
}

// RecordTurn persists a patient message and the assistant's reply.
func (s *TranscriptStore) RecordTurn(ctx context.Context, conversationID, patientMsg, assistantMsg string, state State) error {
	if s == nil || s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conversation: begin transcript tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO conversations (conversation_id, started_at, last_message_at, message_count)
		VALUES ($1, NOW(), NOW(), 2)
		ON CONFLICT (conversation_id)
		DO UPDATE SET last_message_at = NOW(), message_count = conversations.message_count + 2`
	if _, err := tx.ExecContext(ctx, upsert, conversationID); err != nil {
		return fmt.Errorf("conversation: upsert conversation: %w", err)
	}

	const insert = `
		INSERT INTO conversation_messages (id, conversation_id, role, content, state, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := tx.ExecContext(ctx, insert, uuid.New(), conversationID, "patient", patientMsg, string(state)); err != nil {
		return fmt.Errorf("conversation: insert patient message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert, uuid.New(), conversationID, "assistant", assistantMsg, string(state)); err != nil {
		return fmt.Errorf("conversation: insert assistant message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("conversation: commit transcript: %w", err)
	}
	return nil
}

// Messages returns a conversation's transcript in order.
func (s *TranscriptStore) Messages(ctx context.Context, conversationID string) ([]TranscriptMessage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	const query = `
		SELECT id, conversation_id, role, content, state, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation: query transcript: %w", err)
	}
	defer rows.Close()

	var out []TranscriptMessage
	for rows.Next() {
		var m TranscriptMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.State, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan transcript row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
