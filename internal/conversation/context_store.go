package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrContextNotFound means no context is stored for the conversation ID.
var ErrContextNotFound = errors.New("conversation: context not found")

// ContextStore keeps conversation contexts in Redis with a TTL, so an
// abandoned conversation expires instead of lingering.
type ContextStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewContextStore creates a ContextStore.
func NewContextStore(client *redis.Client, ttl time.Duration) *ContextStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ContextStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("medoffice.internal.conversation"),
	}
}

// Save persists a context and refreshes its TTL.
func (s *ContextStore) Save(ctx context.Context, c *Context) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_context")
	defer span.End()

	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal context: %w", err)
	}
	if err := s.redis.Set(ctx, contextKey(c.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist context: %w", err)
	}
	return nil
}

// Load retrieves a context. A missing or expired conversation returns
// ErrContextNotFound.
func (s *ContextStore) Load(ctx context.Context, conversationID string) (*Context, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_context")
	defer span.End()

	data, err := s.redis.Get(ctx, contextKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrContextNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load context: %w", err)
	}

	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode context: %w", err)
	}
	if c.Attempts == nil {
		c.Attempts = make(map[string]int)
	}
	return &c, nil
}

func contextKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}
