// Package models contains domain types for venture-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is the closed set of fact categories a venture can accumulate.
type EntityType string

const (
	EntityTypeVenture           EntityType = "venture"
	EntityTypeMarket            EntityType = "market"
	EntityTypeICP               EntityType = "icp"
	EntityTypeCompetitor        EntityType = "competitor"
	EntityTypeProduct           EntityType = "product"
	EntityTypeTeamMember        EntityType = "team_member"
	EntityTypeMetric            EntityType = "metric"
	EntityTypeFundingAssumption EntityType = "funding_assumption"
	EntityTypeRisk              EntityType = "risk"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypeVenture,
	EntityTypeMarket,
	EntityTypeICP,
	EntityTypeCompetitor,
	EntityTypeProduct,
	EntityTypeTeamMember,
	EntityTypeMetric,
	EntityTypeFundingAssumption,
	EntityTypeRisk,
}

// String returns the string representation of an EntityType.
func (t EntityType) String() string {
	return string(t)
}

// IsValid returns true if the type is a known entity type.
func (t EntityType) IsValid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EntityStatus is the trust status of an entity.
type EntityStatus string

const (
	StatusSuggested   EntityStatus = "suggested"
	StatusNeedsReview EntityStatus = "needs_review"
	StatusConfirmed   EntityStatus = "confirmed"

	// StatusPinned is set only by explicit caller action, never derived.
	// While pinned, conflict handling does not downgrade the entity.
	StatusPinned EntityStatus = "pinned"
)

// IsValid returns true if the status is a known entity status.
func (s EntityStatus) IsValid() bool {
	switch s {
	case StatusSuggested, StatusNeedsReview, StatusConfirmed, StatusPinned:
		return true
	default:
		return false
	}
}

// Confidence thresholds for the status automaton.
const (
	ConfirmedThreshold   = 0.85
	NeedsReviewThreshold = 0.60
)

// MaxEntitiesPerType is the per-venture quota for each entity type.
const MaxEntitiesPerType = 50

// StatusForConfidence maps an extraction confidence score to a trust
// status. StatusPinned is never returned here.
func StatusForConfidence(confidence float64) EntityStatus {
	switch {
	case confidence >= ConfirmedThreshold:
		return StatusConfirmed
	case confidence >= NeedsReviewThreshold:
		return StatusNeedsReview
	default:
		return StatusSuggested
	}
}

// Entity is a structured fact about a venture.
// Stored in kb_entities table.
type Entity struct {
	ID        uuid.UUID    `json:"id"`
	VentureID uuid.UUID    `json:"venture_id"`
	Type      EntityType   `json:"type"`
	Status    EntityStatus `json:"status"`

	// DisplayName is derived from data["name"] and kept in its own
	// indexed column so conflict detection does not scan serialized JSON.
	DisplayName string `json:"display_name"`

	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the entity's traversal-facing view.
func (e *Entity) Snapshot() EntitySnapshot {
	return EntitySnapshot{
		Type:       e.Type,
		Data:       e.Data,
		Confidence: e.Confidence,
	}
}

// EntitySnapshot is the {type, data, confidence} view of an entity
// returned from graph traversal. A zero snapshot stands in for an
// endpoint that no longer resolves to a stored entity.
type EntitySnapshot struct {
	Type       EntityType     `json:"type"`
	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`
}

// DisplayNameFromData extracts the textual "name" field from an entity
// data map. Returns "" when the field is absent or not a string.
func DisplayNameFromData(data map[string]any) string {
	name, _ := data["name"].(string)
	return name
}

// MergeData applies patch onto existing at the top level only. Keys in
// patch overwrite keys of the same name; nested structures are replaced
// wholesale, never merged recursively. Neither input is mutated.
func MergeData(existing, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
