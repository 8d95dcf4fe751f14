package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/apperrors"
	"github.com/venturekb/venture-engine/pkg/models"
)

func TestVentureService_Create(t *testing.T) {
	ventures := &mockVentureRepo{}
	svc := NewVentureService(ventures, zap.NewNop())

	venture, err := svc.Create(context.Background(), "Acme")

	require.NoError(t, err)
	assert.Equal(t, "Acme", venture.Name)
	assert.NotEqual(t, uuid.Nil, venture.ID)
	require.Len(t, ventures.created, 1)
}

func TestVentureService_Create_RequiresName(t *testing.T) {
	svc := NewVentureService(&mockVentureRepo{}, zap.NewNop())

	_, err := svc.Create(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReference)
}

func TestVentureService_Get_NotFound(t *testing.T) {
	svc := NewVentureService(&mockVentureRepo{}, zap.NewNop())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVentureService_Get(t *testing.T) {
	existing := &models.Venture{ID: uuid.New(), Name: "Acme"}
	ventures := &mockVentureRepo{
		getByIDFn: func(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error) {
			if ventureID == existing.ID {
				return existing, nil
			}
			return nil, nil
		},
	}
	svc := NewVentureService(ventures, zap.NewNop())

	venture, err := svc.Get(context.Background(), existing.ID)

	require.NoError(t, err)
	assert.Equal(t, existing, venture)
}
