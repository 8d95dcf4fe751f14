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

// TraverseInput describes a one-hop graph traversal from a filtered
// seed set of entities.
type TraverseInput struct {
	VentureID  uuid.UUID
	EntityType models.EntityType

	// EntityName, when non-empty, narrows the seed set to entities
	// whose data contains it as a case-insensitive substring.
	EntityName string

	RelationType *models.RelationType
	Direction    models.Direction
	StartLimit   int
}

// GraphService provides relation creation, filtered lookup, and
// traversal over the typed relation graph.
type GraphService interface {
	// CreateRelation links two existing entities. Both endpoints must
	// resolve within the venture; otherwise apperrors.ErrInvalidReference.
	CreateRelation(ctx context.Context, ventureID, fromID, toID uuid.UUID, relationType models.RelationType, metadata map[string]any) (*models.Relation, error)

	// GetRelations returns relations touching the given entities,
	// optionally filtered by type, honoring direction.
	GetRelations(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error)

	// Traverse resolves relations around a seed set into full endpoint
	// snapshots. An empty seed set is a success with an explanatory
	// message, never an error.
	Traverse(ctx context.Context, in TraverseInput) (*models.TraversalResult, error)
}

type graphService struct {
	entities  repositories.EntityRepository
	relations repositories.RelationRepository
	events    repositories.EventRepository
	tx        database.TxManager
	logger    *zap.Logger
}

// NewGraphService creates a new GraphService.
func NewGraphService(
	entities repositories.EntityRepository,
	relations repositories.RelationRepository,
	events repositories.EventRepository,
	tx database.TxManager,
	logger *zap.Logger,
) GraphService {
	return &graphService{
		entities:  entities,
		relations: relations,
		events:    events,
		tx:        tx,
		logger:    logger.Named("graph-service"),
	}
}

var _ GraphService = (*graphService)(nil)

func (s *graphService) CreateRelation(ctx context.Context, ventureID, fromID, toID uuid.UUID, relationType models.RelationType, metadata map[string]any) (*models.Relation, error) {
	if !relationType.IsValid() {
		return nil, fmt.Errorf("%w: unknown relation type %q", apperrors.ErrInvalidReference, relationType)
	}

	actor := models.ActorOrSystem(ctx)

	var relation *models.Relation
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		for _, id := range []uuid.UUID{fromID, toID} {
			endpoint, err := s.entities.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if endpoint == nil || endpoint.VentureID != ventureID {
				return fmt.Errorf("%w: entity %s not found in venture", apperrors.ErrInvalidReference, id)
			}
		}

		relation = &models.Relation{
			VentureID:    ventureID,
			FromEntityID: fromID,
			ToEntityID:   toID,
			Type:         relationType,
			Metadata:     metadata,
		}
		if err := s.relations.Create(ctx, relation); err != nil {
			return err
		}

		return s.events.Append(ctx, &models.Event{
			VentureID: ventureID,
			Type:      models.EventRelationCreated,
			EntityID:  fromID.String(),
			Actor:     actor,
			Payload: map[string]any{
				"relation_type":  relationType,
				"from_entity_id": fromID.String(),
				"to_entity_id":   toID.String(),
			},
		})
	})
	if err != nil {
		s.logger.Error("Failed to create relation",
			zap.String("venture_id", ventureID.String()),
			zap.String("relation_type", string(relationType)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return relation, nil
}

func (s *graphService) GetRelations(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error) {
	if !direction.IsValid() {
		return nil, fmt.Errorf("%w: unknown direction %q", apperrors.ErrInvalidReference, direction)
	}
	if relationType != nil && !relationType.IsValid() {
		return nil, fmt.Errorf("%w: unknown relation type %q", apperrors.ErrInvalidReference, *relationType)
	}

	relations, err := s.relations.GetForEntities(ctx, entityIDs, relationType, direction)
	if err != nil {
		s.logger.Error("Failed to get relations",
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	return relations, nil
}

func (s *graphService) Traverse(ctx context.Context, in TraverseInput) (*models.TraversalResult, error) {
	if !in.EntityType.IsValid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", apperrors.ErrInvalidReference, in.EntityType)
	}
	if !in.Direction.IsValid() {
		return nil, fmt.Errorf("%w: unknown direction %q", apperrors.ErrInvalidReference, in.Direction)
	}
	if in.RelationType != nil && !in.RelationType.IsValid() {
		return nil, fmt.Errorf("%w: unknown relation type %q", apperrors.ErrInvalidReference, *in.RelationType)
	}

	seeds, err := s.entities.Search(ctx, in.VentureID, models.SearchFilter{
		Keyword: in.EntityName,
		Types:   []models.EntityType{in.EntityType},
		Limit:   in.StartLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		message := fmt.Sprintf("no %s entities found", in.EntityType)
		if in.EntityName != "" {
			message = fmt.Sprintf("no %s entities found matching %q", in.EntityType, in.EntityName)
		}
		return &models.TraversalResult{RelationCount: 0, Message: message}, nil
	}

	seedIDs := make([]uuid.UUID, 0, len(seeds))
	byID := make(map[uuid.UUID]*models.Entity, len(seeds))
	for _, seed := range seeds {
		seedIDs = append(seedIDs, seed.ID)
		byID[seed.ID] = seed
	}

	relations, err := s.relations.GetForEntities(ctx, seedIDs, in.RelationType, in.Direction)
	if err != nil {
		return nil, err
	}

	// Resolve every endpoint not already loaded in one batch lookup.
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, rel := range relations {
		for _, id := range []uuid.UUID{rel.FromEntityID, rel.ToEntityID} {
			if _, loaded := byID[id]; !loaded && !seen[id] {
				seen[id] = true
				missing = append(missing, id)
			}
		}
	}
	if len(missing) > 0 {
		others, err := s.entities.GetByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			byID[other.ID] = other
		}
	}

	edges := make([]models.TraversalEdge, 0, len(relations))
	for _, rel := range relations {
		edges = append(edges, models.TraversalEdge{
			From:     snapshotOrEmpty(byID[rel.FromEntityID]),
			To:       snapshotOrEmpty(byID[rel.ToEntityID]),
			Type:     rel.Type,
			Metadata: rel.Metadata,
		})
	}

	return &models.TraversalResult{
		Edges:         edges,
		RelationCount: len(edges),
		Message:       fmt.Sprintf("found %d relations from %d seed entities", len(edges), len(seeds)),
	}, nil
}

// snapshotOrEmpty handles endpoints that were referenced by a relation
// but deleted afterwards: traversal substitutes an empty record rather
// than failing.
func snapshotOrEmpty(entity *models.Entity) models.EntitySnapshot {
	if entity == nil {
		return models.EntitySnapshot{}
	}
	return entity.Snapshot()
}
