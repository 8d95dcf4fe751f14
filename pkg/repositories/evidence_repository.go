package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/models"
)

// EvidenceRepository provides data access for entity evidence rows.
// Evidence cascade-deletes with its entity at the storage layer.
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *models.Evidence) error
	GetByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error)
}

type evidenceRepository struct{}

// NewEvidenceRepository creates a new EvidenceRepository.
func NewEvidenceRepository() EvidenceRepository {
	return &evidenceRepository{}
}

var _ EvidenceRepository = (*evidenceRepository)(nil)

func (r *evidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	evidence.CreatedAt = time.Now()

	if evidence.ID == uuid.Nil {
		evidence.ID = uuid.New()
	}

	query := `
		INSERT INTO kb_evidence (id, entity_id, snippet, source_type, document_id, agent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		evidence.ID, evidence.EntityID, evidence.Snippet, evidence.SourceType,
		evidence.DocumentID, evidence.AgentID, evidence.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evidence: %w", err)
	}

	return nil
}

func (r *evidenceRepository) GetByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	query := `
		SELECT id, entity_id, snippet, source_type, document_id, agent_id, created_at
		FROM kb_evidence
		WHERE entity_id = $1
		ORDER BY created_at`

	rows, err := scope.Conn.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence: %w", err)
	}
	defer rows.Close()

	var evidence []*models.Evidence
	for rows.Next() {
		ev, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		evidence = append(evidence, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evidence: %w", err)
	}

	return evidence, nil
}

func scanEvidence(row pgx.Row) (*models.Evidence, error) {
	var ev models.Evidence

	err := row.Scan(
		&ev.ID, &ev.EntityID, &ev.Snippet, &ev.SourceType,
		&ev.DocumentID, &ev.AgentID, &ev.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan evidence: %w", err)
	}

	return &ev, nil
}
