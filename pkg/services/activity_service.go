package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/logging"
	"github.com/venturekb/venture-engine/pkg/models"
	"github.com/venturekb/venture-engine/pkg/repositories"
)

// defaultFeedLimit bounds the activity feed when the caller does not
// supply a limit.
const defaultFeedLimit = 100

// ActivityService reads the append-only event log for audit and
// activity-feed consumers. It never reconstructs entity state from
// events; current state lives in the entity table.
type ActivityService interface {
	// Feed returns a venture's events in creation order.
	Feed(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error)

	// EntityHistory returns every event that referenced the entity,
	// including those that outlived its deletion.
	EntityHistory(ctx context.Context, entityID uuid.UUID) ([]*models.Event, error)
}

type activityService struct {
	events repositories.EventRepository
	logger *zap.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(events repositories.EventRepository, logger *zap.Logger) ActivityService {
	return &activityService{
		events: events,
		logger: logger.Named("activity-service"),
	}
}

var _ ActivityService = (*activityService)(nil)

func (s *activityService) Feed(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	events, err := s.events.GetByVenture(ctx, ventureID, limit)
	if err != nil {
		s.logger.Error("Failed to get activity feed",
			zap.String("venture_id", ventureID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("get activity feed: %w", err)
	}

	return events, nil
}

func (s *activityService) EntityHistory(ctx context.Context, entityID uuid.UUID) ([]*models.Event, error) {
	events, err := s.events.GetByEntity(ctx, entityID.String())
	if err != nil {
		s.logger.Error("Failed to get entity history",
			zap.String("entity_id", entityID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("get entity history: %w", err)
	}

	return events, nil
}
