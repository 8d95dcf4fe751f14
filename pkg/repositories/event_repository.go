package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/models"
)

// EventRepository provides access to the append-only event log.
// There is deliberately no update or delete method; the kb_events table
// additionally rejects UPDATE and DELETE with a trigger.
type EventRepository interface {
	// Append inserts one event and fills in its store-assigned sequence
	// number and timestamp.
	Append(ctx context.Context, event *models.Event) error

	// GetByVenture returns up to limit events for a venture in creation
	// order (ascending sequence).
	GetByVenture(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error)

	// GetByEntity returns all events referencing the entity id, in
	// creation order. The entity itself may no longer exist.
	GetByEntity(ctx context.Context, entityID string) ([]*models.Event, error)
}

type eventRepository struct{}

// NewEventRepository creates a new EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepository{}
}

var _ EventRepository = (*eventRepository)(nil)

func (r *eventRepository) Append(ctx context.Context, event *models.Event) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()

	var payloadJSON []byte
	var err error
	if len(event.Payload) > 0 {
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
	}

	query := `
		INSERT INTO kb_events (id, venture_id, event_type, entity_id, payload, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`

	err = scope.Conn.QueryRow(ctx, query,
		event.ID, event.VentureID, event.Type, event.EntityID,
		payloadJSON, event.Actor, event.CreatedAt,
	).Scan(&event.Seq)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetByVenture(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	query := `
		SELECT id, seq, venture_id, event_type, entity_id, payload, actor, created_at
		FROM kb_events
		WHERE venture_id = $1
		ORDER BY seq
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, ventureID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *eventRepository) GetByEntity(ctx context.Context, entityID string) ([]*models.Event, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	query := `
		SELECT id, seq, venture_id, event_type, entity_id, payload, actor, created_at
		FROM kb_events
		WHERE entity_id = $1
		ORDER BY seq`

	rows, err := scope.Conn.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by entity: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	var payloadJSON []byte

	err := row.Scan(
		&event.ID, &event.Seq, &event.VentureID, &event.Type,
		&event.EntityID, &payloadJSON, &event.Actor, &event.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	if len(payloadJSON) > 0 && string(payloadJSON) != "null" {
		if err := json.Unmarshal(payloadJSON, &event.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
		}
	}

	return &event, nil
}
