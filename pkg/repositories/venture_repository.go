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

// VentureRepository provides data access for ventures, the tenant
// anchor every other table hangs off.
type VentureRepository interface {
	Create(ctx context.Context, venture *models.Venture) error
	GetByID(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error)
}

type ventureRepository struct{}

// NewVentureRepository creates a new VentureRepository.
func NewVentureRepository() VentureRepository {
	return &ventureRepository{}
}

var _ VentureRepository = (*ventureRepository)(nil)

func (r *ventureRepository) Create(ctx context.Context, venture *models.Venture) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	now := time.Now()
	venture.CreatedAt = now
	venture.UpdatedAt = now

	if venture.ID == uuid.Nil {
		venture.ID = uuid.New()
	}

	query := `
		INSERT INTO kb_ventures (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := scope.Conn.Exec(ctx, query,
		venture.ID, venture.Name, venture.CreatedAt, venture.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create venture: %w", err)
	}

	return nil
}

func (r *ventureRepository) GetByID(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	query := `
		SELECT id, name, created_at, updated_at
		FROM kb_ventures
		WHERE id = $1`

	var v models.Venture
	err := scope.Conn.QueryRow(ctx, query, ventureID).Scan(
		&v.ID, &v.Name, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan venture: %w", err)
	}

	return &v, nil
}
