package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/apperrors"
	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/logging"
	"github.com/venturekb/venture-engine/pkg/models"
	"github.com/venturekb/venture-engine/pkg/repositories"
)

// CreateEntityInput carries the caller-supplied fields for entity creation.
type CreateEntityInput struct {
	VentureID  uuid.UUID
	Type       models.EntityType
	Data       map[string]any
	Confidence float64
	Evidence   *models.EvidenceInput
}

// UpdateEntityInput carries a partial entity update. Nil fields are
// left untouched. Data is merged at the top level only. An explicit
// Status always wins over the confidence-derived status.
type UpdateEntityInput struct {
	Data       map[string]any
	Status     *models.EntityStatus
	Confidence *float64
}

// EntityService owns the entity lifecycle: quota enforcement, status
// derivation, conflict detection, evidence attachment, and the audit
// events every mutation produces.
type EntityService interface {
	// Create inserts a new entity. It fails with apperrors.ErrQuotaExceeded
	// when the venture already holds MaxEntitiesPerType entities of the
	// type, persisting nothing. When a plausible duplicate is found the
	// new entity is flagged needs_review, linked to the existing one
	// with a conflicts_with relation, and a conflict_detected event is
	// appended alongside the entity_created event.
	Create(ctx context.Context, in CreateEntityInput) (*models.Entity, error)

	// Update applies a partial update. Fails with apperrors.ErrNotFound
	// when the entity does not exist.
	Update(ctx context.Context, entityID uuid.UUID, in UpdateEntityInput) (*models.Entity, error)

	// Delete appends an entity_deleted event capturing the entity's
	// final type and data, then removes the row. Evidence cascades.
	Delete(ctx context.Context, entityID uuid.UUID) error

	// Evidence returns the evidence attached to an entity, oldest
	// first. Fails with apperrors.ErrNotFound when the entity does not
	// exist.
	Evidence(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error)

	// Search runs keyword/type filtering over a venture's entities.
	Search(ctx context.Context, ventureID uuid.UUID, keyword string, types []models.EntityType, limit int) ([]*models.Entity, error)

	// SearchAdvanced adds confidence, status, and staleness filters.
	// The filter limit is clamped to models.MaxSearchLimit.
	SearchAdvanced(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error)
}

type entityService struct {
	entities  repositories.EntityRepository
	evidence  repositories.EvidenceRepository
	relations repositories.RelationRepository
	events    repositories.EventRepository
	tx        database.TxManager
	logger    *zap.Logger
}

// NewEntityService creates a new EntityService.
func NewEntityService(
	entities repositories.EntityRepository,
	evidence repositories.EvidenceRepository,
	relations repositories.RelationRepository,
	events repositories.EventRepository,
	tx database.TxManager,
	logger *zap.Logger,
) EntityService {
	return &entityService{
		entities:  entities,
		evidence:  evidence,
		relations: relations,
		events:    events,
		tx:        tx,
		logger:    logger.Named("entity-service"),
	}
}

var _ EntityService = (*entityService)(nil)

func (s *entityService) Create(ctx context.Context, in CreateEntityInput) (*models.Entity, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrInvalidReference, in.Type)
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %.2f outside [0,1]", apperrors.ErrInvalidReference, in.Confidence)
	}
	if in.Data == nil {
		in.Data = map[string]any{}
	}
	if err := models.ValidateData(in.Type, in.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidReference, err)
	}

	actor := models.ActorOrSystem(ctx)

	var entity *models.Entity
	// The quota count and conflict lookup are read-then-write sequences;
	// SERIALIZABLE isolation (with retry) keeps concurrent creates from
	// both passing the checks before either commits.
	err := s.tx.RunSerializable(ctx, func(ctx context.Context) error {
		count, err := s.entities.CountByType(ctx, in.VentureID, in.Type)
		if err != nil {
			return err
		}
		if count >= models.MaxEntitiesPerType {
			return fmt.Errorf("%w: %q already has %d entities", apperrors.ErrQuotaExceeded, in.Type, count)
		}

		entity = &models.Entity{
			VentureID:   in.VentureID,
			Type:        in.Type,
			Status:      models.StatusForConfidence(in.Confidence),
			DisplayName: models.DisplayNameFromData(in.Data),
			Data:        in.Data,
			Confidence:  in.Confidence,
		}

		conflict, err := s.entities.FindConflict(ctx, in.VentureID, in.Type, entity.DisplayName)
		if err != nil {
			return err
		}
		if conflict != nil {
			entity.Status = models.StatusNeedsReview
		}

		if err := s.entities.Create(ctx, entity); err != nil {
			return err
		}

		if in.Evidence != nil {
			ev := &models.Evidence{
				EntityID:   entity.ID,
				Snippet:    in.Evidence.Snippet,
				SourceType: in.Evidence.SourceType,
				DocumentID: in.Evidence.DocumentID,
				AgentID:    in.Evidence.AgentID,
			}
			if err := s.evidence.Create(ctx, ev); err != nil {
				return err
			}
		}

		if err := s.events.Append(ctx, &models.Event{
			VentureID: entity.VentureID,
			Type:      models.EventEntityCreated,
			EntityID:  entity.ID.String(),
			Actor:     actor,
			Payload: map[string]any{
				"type":       entity.Type,
				"status":     entity.Status,
				"confidence": entity.Confidence,
				"data":       entity.Data,
			},
		}); err != nil {
			return err
		}

		if conflict != nil {
			if err := s.handleConflict(ctx, entity, conflict, actor); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create entity",
			zap.String("venture_id", in.VentureID.String()),
			zap.String("entity_type", in.Type.String()),
			zap.String("actor", logging.SanitizeActor(actor)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return entity, nil
}

// handleConflict links a freshly created entity to its suspected
// duplicate and downgrades the existing entity for review. Pinned
// entities are never downgraded. The conflict relation itself does not
// produce a relation_created event; the conflict_detected event is the
// audit record for the whole outcome.
func (s *entityService) handleConflict(ctx context.Context, entity, conflict *models.Entity, actor string) error {
	if err := s.relations.Create(ctx, &models.Relation{
		VentureID:    entity.VentureID,
		FromEntityID: entity.ID,
		ToEntityID:   conflict.ID,
		Type:         models.RelationConflictsWith,
		Metadata:     map[string]any{"matched_name": entity.DisplayName},
	}); err != nil {
		return err
	}

	if conflict.Status != models.StatusPinned && conflict.Status != models.StatusNeedsReview {
		previous := conflict.Status
		conflict.Status = models.StatusNeedsReview
		if err := s.entities.Update(ctx, conflict); err != nil {
			return err
		}
		if err := s.events.Append(ctx, &models.Event{
			VentureID: conflict.VentureID,
			Type:      models.EventEntityUpdated,
			EntityID:  conflict.ID.String(),
			Actor:     actor,
			Payload: map[string]any{
				"status": models.FieldChange{Old: previous, New: conflict.Status},
				"reason": "conflict_downgrade",
			},
		}); err != nil {
			return err
		}
	}

	return s.events.Append(ctx, &models.Event{
		VentureID: entity.VentureID,
		Type:      models.EventConflictDetected,
		EntityID:  entity.ID.String(),
		Actor:     actor,
		Payload: map[string]any{
			"conflicting_entity_id": conflict.ID.String(),
			"matched_name":          entity.DisplayName,
		},
	})
}

func (s *entityService) Update(ctx context.Context, entityID uuid.UUID, in UpdateEntityInput) (*models.Entity, error) {
	if in.Status != nil && !in.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidReference, *in.Status)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence %.2f outside [0,1]", apperrors.ErrInvalidReference, *in.Confidence)
	}

	actor := models.ActorOrSystem(ctx)

	var entity *models.Entity
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		var err error
		entity, err = s.entities.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		if entity == nil {
			return fmt.Errorf("%w: entity %s", apperrors.ErrNotFound, entityID)
		}

		before := map[string]any{
			"data":       entity.Data,
			"status":     entity.Status,
			"confidence": entity.Confidence,
		}

		if in.Data != nil {
			entity.Data = models.MergeData(entity.Data, in.Data)
			if err := models.ValidateData(entity.Type, entity.Data); err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrInvalidReference, err)
			}
			entity.DisplayName = models.DisplayNameFromData(entity.Data)
		}
		if in.Confidence != nil {
			entity.Confidence = *in.Confidence
			if in.Status == nil {
				entity.Status = models.StatusForConfidence(entity.Confidence)
			}
		}
		if in.Status != nil {
			entity.Status = *in.Status
		}

		if err := s.entities.Update(ctx, entity); err != nil {
			return err
		}

		// An explicit confirmation gets its own event type; everything
		// else is a plain update with before/after snapshots.
		eventType := models.EventEntityUpdated
		if in.Status != nil && *in.Status == models.StatusConfirmed {
			eventType = models.EventEntityConfirmed
		}

		return s.events.Append(ctx, &models.Event{
			VentureID: entity.VentureID,
			Type:      eventType,
			EntityID:  entity.ID.String(),
			Actor:     actor,
			Payload: map[string]any{
				"before": before,
				"after": map[string]any{
					"data":       entity.Data,
					"status":     entity.Status,
					"confidence": entity.Confidence,
				},
			},
		})
	})
	if err != nil {
		s.logger.Error("Failed to update entity",
			zap.String("entity_id", entityID.String()),
			zap.String("actor", logging.SanitizeActor(actor)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return entity, nil
}

func (s *entityService) Delete(ctx context.Context, entityID uuid.UUID) error {
	actor := models.ActorOrSystem(ctx)

	err := s.tx.Run(ctx, func(ctx context.Context) error {
		entity, err := s.entities.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		if entity == nil {
			return fmt.Errorf("%w: entity %s", apperrors.ErrNotFound, entityID)
		}

		// The deletion event is appended before the row disappears; its
		// payload is the only remaining trace of the entity's data.
		if err := s.events.Append(ctx, &models.Event{
			VentureID: entity.VentureID,
			Type:      models.EventEntityDeleted,
			EntityID:  entity.ID.String(),
			Actor:     actor,
			Payload: map[string]any{
				"type":       entity.Type,
				"data":       entity.Data,
				"status":     entity.Status,
				"confidence": entity.Confidence,
			},
		}); err != nil {
			return err
		}

		return s.entities.Delete(ctx, entityID)
	})
	if err != nil {
		s.logger.Error("Failed to delete entity",
			zap.String("entity_id", entityID.String()),
			zap.String("actor", logging.SanitizeActor(actor)),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}

	return nil
}

func (s *entityService) Evidence(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error) {
	entity, err := s.entities.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: entity %s", apperrors.ErrNotFound, entityID)
	}

	evidence, err := s.evidence.GetByEntity(ctx, entityID)
	if err != nil {
		s.logger.Error("Failed to get entity evidence",
			zap.String("entity_id", entityID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return evidence, nil
}

func (s *entityService) Search(ctx context.Context, ventureID uuid.UUID, keyword string, types []models.EntityType, limit int) ([]*models.Entity, error) {
	return s.SearchAdvanced(ctx, ventureID, models.SearchFilter{
		Keyword: keyword,
		Types:   types,
		Limit:   limit,
	})
}

func (s *entityService) SearchAdvanced(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error) {
	for _, t := range filter.Types {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrInvalidReference, t)
		}
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidReference, *filter.Status)
	}

	entities, err := s.entities.Search(ctx, ventureID, filter)
	if err != nil {
		s.logger.Error("Failed to search entities",
			zap.String("venture_id", ventureID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return entities, nil
}
