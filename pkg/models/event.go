package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the closed set of audit event types.
type EventType string

const (
	EventEntityCreated    EventType = "entity_created"
	EventEntityUpdated    EventType = "entity_updated"
	EventEntityDeleted    EventType = "entity_deleted"
	EventEntityConfirmed  EventType = "entity_confirmed"
	EventRelationCreated  EventType = "relation_created"
	EventConflictDetected EventType = "conflict_detected"
)

// IsValid returns true if the event type is recognized.
func (t EventType) IsValid() bool {
	switch t {
	case EventEntityCreated, EventEntityUpdated, EventEntityDeleted,
		EventEntityConfirmed, EventRelationCreated, EventConflictDetected:
		return true
	default:
		return false
	}
}

// Event is an immutable audit record of one mutation.
// Stored in kb_events table. The table is append-only: rows are never
// updated or deleted, and they survive deletion of the entity they
// describe. EntityID is text rather than a foreign key for exactly
// that reason.
type Event struct {
	ID uuid.UUID `json:"id"`

	// Seq is assigned by the store and gives a strict total order of
	// events within a venture, even when created_at timestamps collide.
	Seq int64 `json:"seq"`

	VentureID uuid.UUID      `json:"venture_id"`
	Type      EventType      `json:"event_type"`
	EntityID  string         `json:"entity_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Actor     string         `json:"actor"`
	CreatedAt time.Time      `json:"created_at"`
}

// FieldChange captures the before and after values of one field inside
// an entity_updated payload.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}
