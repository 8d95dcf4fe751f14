package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/venturekb/venture-engine/pkg/models"
)

// Hand-written mocks with overridable function fields. Mutation methods
// record their arguments so tests can assert on what the service
// persisted and in what order.

type mockEntityRepo struct {
	createFn       func(ctx context.Context, entity *models.Entity) error
	getByIDFn      func(ctx context.Context, entityID uuid.UUID) (*models.Entity, error)
	getByIDsFn     func(ctx context.Context, entityIDs []uuid.UUID) ([]*models.Entity, error)
	updateFn       func(ctx context.Context, entity *models.Entity) error
	deleteFn       func(ctx context.Context, entityID uuid.UUID) error
	countByTypeFn  func(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType) (int, error)
	findConflictFn func(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType, name string) (*models.Entity, error)
	searchFn       func(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error)

	created []*models.Entity
	updated []*models.Entity
	deleted []uuid.UUID
}

func (m *mockEntityRepo) Create(ctx context.Context, entity *models.Entity) error {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	m.created = append(m.created, entity)
	if m.createFn != nil {
		return m.createFn(ctx, entity)
	}
	return nil
}

func (m *mockEntityRepo) GetByID(ctx context.Context, entityID uuid.UUID) (*models.Entity, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, entityID)
	}
	return nil, nil
}

func (m *mockEntityRepo) GetByIDs(ctx context.Context, entityIDs []uuid.UUID) ([]*models.Entity, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, entityIDs)
	}
	return nil, nil
}

func (m *mockEntityRepo) Update(ctx context.Context, entity *models.Entity) error {
	m.updated = append(m.updated, entity)
	if m.updateFn != nil {
		return m.updateFn(ctx, entity)
	}
	return nil
}

func (m *mockEntityRepo) Delete(ctx context.Context, entityID uuid.UUID) error {
	m.deleted = append(m.deleted, entityID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, entityID)
	}
	return nil
}

func (m *mockEntityRepo) CountByType(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType) (int, error) {
	if m.countByTypeFn != nil {
		return m.countByTypeFn(ctx, ventureID, entityType)
	}
	return 0, nil
}

func (m *mockEntityRepo) FindConflict(ctx context.Context, ventureID uuid.UUID, entityType models.EntityType, name string) (*models.Entity, error) {
	if m.findConflictFn != nil {
		return m.findConflictFn(ctx, ventureID, entityType, name)
	}
	return nil, nil
}

func (m *mockEntityRepo) Search(ctx context.Context, ventureID uuid.UUID, filter models.SearchFilter) ([]*models.Entity, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, ventureID, filter)
	}
	return nil, nil
}

type mockEvidenceRepo struct {
	createFn      func(ctx context.Context, evidence *models.Evidence) error
	getByEntityFn func(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error)

	created []*models.Evidence
}

func (m *mockEvidenceRepo) Create(ctx context.Context, evidence *models.Evidence) error {
	m.created = append(m.created, evidence)
	if m.createFn != nil {
		return m.createFn(ctx, evidence)
	}
	return nil
}

func (m *mockEvidenceRepo) GetByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Evidence, error) {
	if m.getByEntityFn != nil {
		return m.getByEntityFn(ctx, entityID)
	}
	return nil, nil
}

type mockVentureRepo struct {
	createFn  func(ctx context.Context, venture *models.Venture) error
	getByIDFn func(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error)

	created []*models.Venture
}

func (m *mockVentureRepo) Create(ctx context.Context, venture *models.Venture) error {
	if venture.ID == uuid.Nil {
		venture.ID = uuid.New()
	}
	m.created = append(m.created, venture)
	if m.createFn != nil {
		return m.createFn(ctx, venture)
	}
	return nil
}

func (m *mockVentureRepo) GetByID(ctx context.Context, ventureID uuid.UUID) (*models.Venture, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, ventureID)
	}
	return nil, nil
}

type mockRelationRepo struct {
	createFn         func(ctx context.Context, relation *models.Relation) error
	getForEntitiesFn func(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error)

	created []*models.Relation
}

func (m *mockRelationRepo) Create(ctx context.Context, relation *models.Relation) error {
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	m.created = append(m.created, relation)
	if m.createFn != nil {
		return m.createFn(ctx, relation)
	}
	return nil
}

func (m *mockRelationRepo) GetForEntities(ctx context.Context, entityIDs []uuid.UUID, relationType *models.RelationType, direction models.Direction) ([]*models.Relation, error) {
	if m.getForEntitiesFn != nil {
		return m.getForEntitiesFn(ctx, entityIDs, relationType, direction)
	}
	return nil, nil
}

type mockEventRepo struct {
	appendFn       func(ctx context.Context, event *models.Event) error
	getByVentureFn func(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error)
	getByEntityFn  func(ctx context.Context, entityID string) ([]*models.Event, error)

	appended []*models.Event
}

func (m *mockEventRepo) Append(ctx context.Context, event *models.Event) error {
	event.Seq = int64(len(m.appended) + 1)
	m.appended = append(m.appended, event)
	if m.appendFn != nil {
		return m.appendFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) GetByVenture(ctx context.Context, ventureID uuid.UUID, limit int) ([]*models.Event, error) {
	if m.getByVentureFn != nil {
		return m.getByVentureFn(ctx, ventureID, limit)
	}
	return nil, nil
}

func (m *mockEventRepo) GetByEntity(ctx context.Context, entityID string) ([]*models.Event, error) {
	if m.getByEntityFn != nil {
		return m.getByEntityFn(ctx, entityID)
	}
	return nil, nil
}

// fakeTxManager runs the function directly. Transaction semantics are
// covered by integration tests against a real database.
type fakeTxManager struct {
	runCalls          int
	serializableCalls int
}

func (f *fakeTxManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	f.runCalls++
	return fn(ctx)
}

func (f *fakeTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.serializableCalls++
	return fn(ctx)
}
