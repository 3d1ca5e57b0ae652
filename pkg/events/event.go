package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONVERSATION_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a generic implementation used when events cross process
// boundaries and lose their concrete type.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ConversationAnswered is emitted after every successfully answered turn so
// downstream analytics can track usage without touching the request path.
type ConversationAnswered struct {
	SessionId  string
	Question   string
	AnswerSize int
	DurationMs int64
	OccurredAt time.Time
}

func (e ConversationAnswered) EventType() string {
	return "CONVERSATION_ANSWERED"
}

func (e ConversationAnswered) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionId,
		"question":    e.Question,
		"answer_size": e.AnswerSize,
		"duration_ms": e.DurationMs,
		"occurred_at": e.OccurredAt,
	}
}

func (e ConversationAnswered) Timestamp() time.Time {
	return e.OccurredAt
}
