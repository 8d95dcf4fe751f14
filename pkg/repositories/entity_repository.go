package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/models"
)

// EntityRepository provides data access for knowledge-base entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error)
	GetByIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*models.Entity, error)
	Update(ctx context.Context, entity *models.Entity) error
	Delete(ctx context.Context, entityID uuid.UUID) error

	// CountByType returns how many entities of the given type exist in
	// the venture. Used for quota enforcement.
	CountByType(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType) (int, error)

	// FindConflict returns the oldest same-venture, same-type entity
	// whose display name contains name, or is contained in name, as a
	// case-insensitive substring. Returns nil when no candidate matches.
	FindConflict(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType, name string) (*models.Entity, error)

	// Search returns entities matching the filter, newest-updated first.
	// The filter's limit is clamped to models.MaxSearchLimit.
	Search(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error)
}

type entityRepository struct{}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository() EntityRepository {
	return &entityRepository{}
}

var _ EntityRepository = (*entityRepository)(nil)

func (r *entityRepository) Create(ctx context.Context, entity *models.Entity) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	dataJSON, err := json.Marshal(entity.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal entity data: %w", err)
	}

	query := `
		INSERT INTO kb_entities (
			id, venture_id, entity_type, status, display_name, data, confidence,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = scope.Conn.Exec(ctx, query,
		entity.ID, entity.VentureID, entity.Type, entity.Status,
		entity.DisplayName, dataJSON, entity.Confidence,
		entity.CreatedAt, entity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}

	return nil
}

func (r *entityRepository) GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	query := `
		SELECT id, venture_id, entity_type, status, display_name, data, confidence,
		       created_at, updated_at
		FROM kb_entities
		WHERE id = $1`

	row := scope.Conn.QueryRow(ctx, query, entityID)
	entity, err := scanEntity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Entity not found
		}
		return nil, err
	}

	return entity, nil
}

func (r *entityRepository) GetByIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*models.Entity, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	if len(entityIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, venture_id, entity_type, status, display_name, data, confidence,
		       created_at, updated_at
		FROM kb_entities
		WHERE id = ANY($1)`

	rows, err := scope.Conn.Query(ctx, query, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities by ids: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

func (r *entityRepository) Update(ctx context.Context, entity *models.Entity) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	entity.UpdatedAt = time.Now()

	dataJSON, err := json.Marshal(entity.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal entity data: %w", err)
	}

	query := `
		UPDATE kb_entities
		SET status = $2, display_name = $3, data = $4, confidence = $5, updated_at = $6
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query,
		entity.ID, entity.Status, entity.DisplayName, dataJSON,
		entity.Confidence, entity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *entityRepository) Delete(ctx context.Context, entityID uuid.UUID) error {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return fmt.Errorf("no venture scope in context")
	}

	query := `DELETE FROM kb_entities WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *entityRepository) CountByType(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType) (int, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no venture scope in context")
	}

	query := `SELECT COUNT(*) FROM kb_entities WHERE venture_id = $1 AND entity_type = $2`

	var count int
	if err := scope.Conn.QueryRow(ctx, query, ventureID, entityType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}

	return count, nil
}

func (r *entityRepository) FindConflict(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType, name string) (*models.Entity, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	if name == "" {
		return nil, nil
	}

	// Substring containment in either direction: an existing "Acme"
	// must match a new "Acme Corp" just as "Acme" matches an existing
	// "Acme Corp". position() keeps the reverse direction literal, so
	// stored names containing LIKE metacharacters cannot act as
	// patterns. Oldest match wins: deterministic tie-break when several
	// entities overlap the candidate name.
	query := `
		SELECT id, venture_id, entity_type, status, display_name, data, confidence,
		       created_at, updated_at
		FROM kb_entities
		WHERE venture_id = $1 AND entity_type = $2
		  AND display_name <> ''
		  AND (display_name ILIKE $3 ESCAPE '\'
		       OR position(lower(display_name) in lower($4)) > 0)
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	row := scope.Conn.QueryRow(ctx, query, ventureID, entityType, likePattern(name), name)
	entity, err := scanEntity(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return entity, nil
}

func (r *entityRepository) Search(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error) {
	scope, ok := database.GetVentureScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no venture scope in context")
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, venture_id, entity_type, status, display_name, data, confidence,
		       created_at, updated_at
		FROM kb_entities
		WHERE venture_id = $1`)

	args := []any{ventureID}

	if filter.Keyword != "" {
		args = append(args, likePattern(filter.Keyword))
		fmt.Fprintf(&sb, ` AND data::text ILIKE $%d ESCAPE '\'`, len(args))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		fmt.Fprintf(&sb, ` AND entity_type = ANY($%d)`, len(args))
	}
	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		fmt.Fprintf(&sb, ` AND confidence >= $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	if filter.StaleDays > 0 {
		args = append(args, filter.StaleDays)
		fmt.Fprintf(&sb, ` AND updated_at < now() - make_interval(days => $%d)`, len(args))
	}

	args = append(args, filter.ClampedLimit())
	fmt.Fprintf(&sb, ` ORDER BY updated_at DESC LIMIT $%d`, len(args))

	rows, err := scope.Conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

// likePattern wraps s in wildcards for a substring ILIKE match,
// escaping LIKE metacharacters in the input.
func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(s) + "%"
}

// ============================================================================
// Helper Functions - Scan
// ============================================================================

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	var dataJSON []byte

	err := row.Scan(
		&e.ID, &e.VentureID, &e.Type, &e.Status, &e.DisplayName,
		&dataJSON, &e.Confidence,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entity: %w", err)
	}

	if len(dataJSON) > 0 && string(dataJSON) != "null" {
		if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entity data: %w", err)
		}
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}

	return &e, nil
}
