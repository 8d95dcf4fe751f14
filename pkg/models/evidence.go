package models

import (
	"time"

	"github.com/google/uuid"
)

// Evidence source types.
const (
	EvidenceSourceDocument = "document"
	EvidenceSourceManual   = "manual"
)

// Evidence is a justification attached to an entity, optionally traced
// back to a source document or the agent that produced it.
// Stored in kb_evidence table; rows cascade-delete with their entity.
type Evidence struct {
	ID         uuid.UUID  `json:"id"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Snippet    string     `json:"snippet"`
	SourceType string     `json:"source_type"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	AgentID    *string    `json:"agent_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EvidenceInput is the caller-supplied portion of an evidence row,
// attached during entity creation.
type EvidenceInput struct {
	Snippet    string     `json:"snippet"`
	SourceType string     `json:"source_type"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	AgentID    *string    `json:"agent_id,omitempty"`
}
