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

// RelationRepository provides data access for typed directed edges
// between entities.
type RelationRepository interface {
	Create(ctx context.Context, relation *models.Relation) error

	// GetForEntities returns relations touching any of the given
	// entities, optionally filtered by relation type, honoring the
	// direction relative to the given set.
	GetForEntities(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error)
}

type relationRepository struct{}

// NewRelationRepository creates a new RelationRepository.
func NewRelationRepository() RelationRepository {
	return &relationRepository{}
}

var _ RelationRepository = (*relationRepository)(nil)

func (r *relationRepository) Create(ctx context.Context, relation *models.Relation) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	relation.CreatedAt = time.Now()

	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}

	var metadataJSON []byte
	var err error
	if len(relation.Metadata) > 0 {
		metadataJSON, err = json.Marshal(relation.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal relation metadata: %w", err)
		}
	}

	query := `
		INSERT INTO kb_relations (
			id, venture_id, from_entity_id, to_entity_id, relation_type, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = scope.Conn.Exec(ctx, query,
		relation.ID, relation.VentureID, relation.FromEntityID, relation.ToEntityID,
		relation.Type, metadataJSON, relation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create relation: %w", err)
	}

	return nil
}

func (r *relationRepository) GetForEntities(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	if len(entityIDs) == 0 {
		return nil, nil
	}

	var where string
	switch direction {
	case models.DirectionOutgoing:
		where = `from_entity_id = ANY($1)`
	case models.DirectionIncoming:
		where = `to_entity_id = ANY($1)`
	case models.DirectionBoth:
		where = `(from_entity_id = ANY($1) OR to_entity_id = ANY($1))`
	default:
		return nil, fmt.Errorf("invalid direction %q", direction)
	}

	query := `
		SELECT id, venture_id, from_entity_id, to_entity_id, relation_type, metadata, created_at
		FROM kb_relations
		WHERE ` + where
	args := []any{entityIDs}

	if relationType != nil {
		args = append(args, *relationType)
		query += fmt.Sprintf(` AND relation_type = $%d`, len(args))
	}

	query += ` ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	var relations []*models.Relation
	for rows.Next() {
		relation, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		relations = append(relations, relation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relations: %w", err)
	}

	return relations, nil
}

func scanRelation(row pgx.Row) (*models.Relation, error) {
	var rel models.Relation
	var metadataJSON []byte

	err := row.Scan(
		&rel.ID, &rel.VentureID, &rel.FromEntityID, &rel.ToEntityID,
		&rel.Type, &metadataJSON, &rel.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan relation: %w", err)
	}

	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		if err := json.Unmarshal(metadataJSON, &rel.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal relation metadata: %w", err)
		}
	}

	return &rel, nil
}
