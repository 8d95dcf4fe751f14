package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/models"
)

func TestActivityService_Feed_DefaultLimit(t *testing.T) {
	var gotLimit int
	events := &mockEventRepo{
		getByVentureFn: func(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error) {
			gotLimit = limit
			return []*models.Event{{Seq: 1}, {Seq: 2}}, nil
		},
	}
	svc := NewActivityService(events, zap.NewNop())

	feed, err := svc.Feed(context.Background(), uuid.New(), 0)

	require.NoError(t, err)
	assert.Equal(t, defaultFeedLimit, gotLimit)
	assert.Len(t, feed, 2)
}

func TestActivityService_Feed_ExplicitLimit(t *testing.T) {
	var gotLimit int
	events := &mockEventRepo{
		getByVentureFn: func(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := NewActivityService(events, zap.NewNop())

	_, err := svc.Feed(context.Background(), uuid.New(), 25)

	require.NoError(t, err)
	assert.Equal(t, 25, gotLimit)
}

func TestActivityService_EntityHistory(t *testing.T) {
	entityID := uuid.New()
	events := &mockEventRepo{
		getByEntityFn: func(ctx context.Context, id string) ([]*models.Event, error) {
			assert.Equal(t, entityID.String(), id)
			return []*models.Event{
				{Seq: 1, Type: models.EventEntityCreated},
				{Seq: 2, Type: models.EventEntityUpdated},
				{Seq: 3, Type: models.EventEntityDeleted},
			}, nil
		},
	}
	svc := NewActivityService(events, zap.NewNop())

	history, err := svc.EntityHistory(context.Background(), entityID)

	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.EventEntityDeleted, history[2].Type)
}
