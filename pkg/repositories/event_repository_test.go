//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/models"
	"github.com/venturekb/venture-engine/pkg/testhelpers"
)

type eventTestContext struct {
	t         *testing.T
	engineDB  *testhelpers.EngineDB
	scopes    *database.VentureScopeProvider
	repo      EventRepository
	ventureID uuid.UUID
}

func setupEventTest(t *testing.T) *eventTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	tc := &eventTestContext{
		t:         t,
		engineDB:  engineDB,
		scopes:    database.NewVentureScopeProvider(engineDB.DB),
		repo:      NewEventRepository(),
		ventureID: uuid.MustParse("00000000-0000-0000-0000-000000000020"),
	}

	ctx := context.Background()
	scope, err := engineDB.DB.WithoutVenture(ctx)
	if err != nil {
		t.Fatalf("failed to create setup scope: %v", err)
	}
	defer scope.Close()

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO kb_ventures (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, tc.ventureID, "Event Test Venture")
	if err != nil {
		t.Fatalf("failed to ensure test venture: %v", err)
	}

	return tc
}

func (tc *eventTestContext) createTestContext() (context.Context, func()) {
	tc.t.Helper()
	ctx, cleanup, err := tc.scopes.WithVentureScope(context.Background(), tc.ventureID)
	if err != nil {
		tc.t.Fatalf("failed to create venture scope: %v", err)
	}
	return ctx, cleanup
}

func (tc *eventTestContext) appendTestEvent(ctx context.Context, eventType models.EventType, entityID string) *models.Event {
	tc.t.Helper()
	event := &models.Event{
		VentureID: tc.ventureID,
		Type:      eventType,
		EntityID:  entityID,
		Actor:     "test",
		Payload:   map[string]any{"source": "test"},
	}
	if err := tc.repo.Append(ctx, event); err != nil {
		tc.t.Fatalf("failed to append test event: %v", err)
	}
	return event
}

func TestEventRepository_Append_AssignsMonotonicSeq(t *testing.T) {
	tc := setupEventTest(t)
	ctx, done := tc.createTestContext()
	defer done()

	entityID := uuid.NewString()
	first := tc.appendTestEvent(ctx, models.EventEntityCreated, entityID)
	second := tc.appendTestEvent(ctx, models.EventEntityUpdated, entityID)

	if first.Seq == 0 || second.Seq == 0 {
		t.Fatal("expected store-assigned sequence numbers")
	}
	if second.Seq <= first.Seq {
		t.Errorf("expected seq to increase: %d then %d", first.Seq, second.Seq)
	}
}

func TestEventRepository_GetByEntity_SurvivesEntityDeletion(t *testing.T) {
	tc := setupEventTest(t)
	ctx, done := tc.createTestContext()
	defer done()

	// The entity id never existed in kb_entities; the log keeps the
	// history regardless.
	entityID := uuid.NewString()
	tc.appendTestEvent(ctx, models.EventEntityCreated, entityID)
	tc.appendTestEvent(ctx, models.EventEntityDeleted, entityID)

	events, err := tc.repo.GetByEntity(ctx, entityID)
	if err != nil {
		t.Fatalf("GetByEntity failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != models.EventEntityCreated || events[1].Type != models.EventEntityDeleted {
		t.Errorf("expected creation-order events, got %s then %s", events[0].Type, events[1].Type)
	}
}

func TestEventRepository_GetByVenture_HonorsLimit(t *testing.T) {
	tc := setupEventTest(t)
	ctx, done := tc.createTestContext()
	defer done()

	entityID := uuid.NewString()
	for i := 0; i < 5; i++ {
		tc.appendTestEvent(ctx, models.EventEntityUpdated, entityID)
	}

	events, err := tc.repo.GetByVenture(ctx, tc.ventureID, 3)
	if err != nil {
		t.Fatalf("GetByVenture failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Errorf("expected ascending seq, got %d after %d", events[i].Seq, events[i-1].Seq)
		}
	}
}

func TestEventRepository_TableRejectsMutation(t *testing.T) {
	tc := setupEventTest(t)
	ctx, done := tc.createTestContext()
	defer done()

	event := tc.appendTestEvent(ctx, models.EventEntityCreated, uuid.NewString())

	scope, _ := database.GetVentureScope(ctx)
	if _, err := scope.Conn.Exec(ctx, "UPDATE kb_events SET actor = 'tampered' WHERE id = $1", event.ID); err == nil {
		t.Error("expected UPDATE on kb_events to be rejected")
	}
	if _, err := scope.Conn.Exec(ctx, "DELETE FROM kb_events WHERE id = $1", event.ID); err == nil {
		t.Error("expected DELETE on kb_events to be rejected")
	}
}
