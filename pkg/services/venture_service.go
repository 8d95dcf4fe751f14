package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/apperrors"
	"github.com/venturekb/venture-engine/pkg/models"
	"github.com/venturekb/venture-engine/pkg/repositories"
)

// VentureService manages the tenant anchor every other table hangs off.
type VentureService interface {
	// Create registers a new venture.
	Create(ctx context.Context, name string) (*models.Venture, error)

	// Get returns a venture by id. Fails with apperrors.ErrNotFound
	// when it does not exist.
	Get(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error)
}

type ventureService struct {
	ventures repositories.VentureRepository
	logger   *zap.Logger
}

// NewVentureService creates a new VentureService.
func NewVentureService(ventures repositories.VentureRepository, logger *zap.Logger) VentureService {
	return &ventureService{
		ventures: ventures,
		logger:   logger.Named("venture-service"),
	}
}

var _ VentureService = (*ventureService)(nil)

func (s *ventureService) Create(ctx context.Context, name string) (*models.Venture, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: venture name is required", apperrors.ErrInvalidReference)
	}

	venture := &models.Venture{Name: name}
	if err := s.ventures.Create(ctx, venture); err != nil {
		s.logger.Error("Failed to create venture", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Created venture",
		zap.String("venture_id", venture.ID.String()),
		zap.String("name", name))
	return venture, nil
}

func (s *ventureService) Get(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error) {
	venture, err := s.ventures.GetByID(ctx, ventureID)
	if err != nil {
		return nil, err
	}
	if venture == nil {
		return nil, fmt.Errorf("%w: venture %s", apperrors.ErrNotFound, ventureID)
	}
	return venture, nil
}
