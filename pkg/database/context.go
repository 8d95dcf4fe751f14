package database

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// VentureScopeKey is the context key for storing the venture-scoped
	// database connection.
	VentureScopeKey contextKey = "ventureScope"
)

// GetVentureScope retrieves the venture-scoped database connection from
// context. Returns nil and false if not present.
func GetVentureScope(ctx context.Context) (*VentureScope, bool) {
	scope, ok := ctx.Value(VentureScopeKey).(*VentureScope)
	return scope, ok
}

// SetVentureScope stores the venture-scoped database connection in context.
func SetVentureScope(ctx context.Context, scope *VentureScope) context.Context {
	return context.WithValue(ctx, VentureScopeKey, scope)
}

// VentureScopeProvider creates venture-scoped contexts for database
// operations on behalf of callers that only hold a *DB.
type VentureScopeProvider struct {
	db *DB
}

// NewVentureScopeProvider creates a VentureScopeProvider for the given database.
func NewVentureScopeProvider(db *DB) *VentureScopeProvider {
	return &VentureScopeProvider{db: db}
}

// WithVentureScope returns a context with venture scope set for the
// given venture. The cleanup function must be called when the scope is
// no longer needed.
func (p *VentureScopeProvider) WithVentureScope(ctx context.Context, ventureID uuid.UUID) (context.Context, func(), error) {
	scope, err := p.db.WithVenture(ctx, ventureID)
	if err != nil {
		return nil, nil, err
	}
	ventureCtx := SetVentureScope(ctx, scope)
	return ventureCtx, func() { scope.Close() }, nil
}
