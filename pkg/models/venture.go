package models

import (
	"time"

	"github.com/google/uuid"
)

// Venture is the tenant-scoping domain object that owns all entities,
// evidence, relations, and events in the knowledge base.
// Stored in kb_ventures table.
type Venture struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
