package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationType is the closed set of edge types between entities.
type RelationType string

const (
	RelationCompetesWith  RelationType = "competes_with"
	RelationTargets       RelationType = "targets"
	RelationDependsOn     RelationType = "depends_on"
	RelationConflictsWith RelationType = "conflicts_with"
	RelationBelongsTo     RelationType = "belongs_to"
)

// IsValid returns true if the type is a known relation type.
func (t RelationType) IsValid() bool {
	switch t {
	case RelationCompetesWith, RelationTargets, RelationDependsOn,
		RelationConflictsWith, RelationBelongsTo:
		return true
	default:
		return false
	}
}

// Direction selects which endpoint of a relation to filter by.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// IsValid returns true if the direction is recognized.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return true
	default:
		return false
	}
}

// Relation is a typed directed edge between two entities. Endpoints are
// validated at creation time but deliberately not foreign keys: a
// relation outlives the deletion of either endpoint, and traversal
// substitutes an empty snapshot for endpoints that no longer resolve.
// Stored in kb_relations table.
type Relation struct {
	ID           uuid.UUID      `json:"id"`
	VentureID    uuid.UUID      `json:"venture_id"`
	FromEntityID uuid.UUID      `json:"from_entity_id"`
	ToEntityID   uuid.UUID      `json:"to_entity_id"`
	Type         RelationType   `json:"type"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TraversalEdge is one resolved relation in a traversal result, with
// full endpoint snapshots rather than bare identifiers.
type TraversalEdge struct {
	From     EntitySnapshot `json:"from"`
	To       EntitySnapshot `json:"to"`
	Type     RelationType   `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TraversalResult is the outcome of a graph traversal. An empty seed
// set yields RelationCount 0 with an explanatory message; it is never
// an error.
type TraversalResult struct {
	Edges         []TraversalEdge `json:"edges"`
	RelationCount int             `json:"relation_count"`
	Message       string          `json:"message,omitempty"`
}
