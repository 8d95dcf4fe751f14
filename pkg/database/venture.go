package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations repositories need. It is
// satisfied by both *pgxpool.Conn and pgx.Tx, so repository code works
// unchanged inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VentureScope wraps a connection with venture context and ensures cleanup.
// The connection has app.current_venture_id set for RLS policy evaluation.
type VentureScope struct {
	Conn Querier

	conn *pgxpool.Conn
}

// Close resets venture context and releases the connection to the pool.
// This MUST be called to prevent venture context from leaking to the
// next request.
func (s *VentureScope) Close() {
	if s.conn == nil {
		return
	}
	_, _ = s.conn.Exec(context.Background(), "RESET app.current_venture_id")
	s.conn.Release()
	s.conn = nil
}

// WithVenture acquires a connection and sets the venture context for RLS.
// The returned VentureScope MUST be closed with defer scope.Close().
func (db *DB) WithVenture(ctx context.Context, ventureID uuid.UUID) (*VentureScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.current_venture_id', $1, false)", ventureID.String())
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &VentureScope{Conn: conn, conn: conn}, nil
}

// WithoutVenture acquires a connection without venture context.
// Use this for cross-venture operations (venture creation, test setup).
// The returned VentureScope MUST be closed with defer scope.Close().
func (db *DB) WithoutVenture(ctx context.Context) (*VentureScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &VentureScope{Conn: conn, conn: conn}, nil
}
