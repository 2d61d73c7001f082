package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/datenknoten/freundebuch/pkg/tracing"
)

// Event types published to the domain event topic.
const (
	TypeFriendCreated       = "friend.created"
	TypeFriendUpdated       = "friend.updated"
	TypeFriendDeleted       = "friend.deleted"
	TypeCollectiveCreated   = "collective.created"
	TypeCollectiveUpdated   = "collective.updated"
	TypeCollectiveDeleted   = "collective.deleted"
	TypeContactFieldCreated = "contact_field.created"
	TypeContactFieldUpdated = "contact_field.updated"
	TypeContactFieldDeleted = "contact_field.deleted"
	TypeRelationshipAdded   = "relationship.added"
	TypeRelationshipUpdated = "relationship.updated"
	TypeRelationshipRemoved = "relationship.removed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
	TraceID    string    `json:"traceId,omitempty"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher is the transport the emitter writes through.
type Publisher interface {
	Write(ctx context.Context, key string, value []byte) error
}

// Emitter publishes domain events keyed by user so one user's events stay
// ordered. A nil emitter (events disabled) is safe to call.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// Emit publishes best-effort: a broker failure is logged, never surfaced to
// the request that produced the event.
func (e *Emitter) Emit(ctx context.Context, eventType string, userID string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.Emit")
	defer span.End()

	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		TraceID:    tracing.GetTraceID(ctx),
		Payload:    payload,
	}

	value, err := json.Marshal(event)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"user_id":    userID,
		}).Error("failed to marshal event")
		return
	}

	if err := e.publisher.Write(ctx, userID, value); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"user_id":    userID,
		}).Error("failed to publish event")
	}
}
