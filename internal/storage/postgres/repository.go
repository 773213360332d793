package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository groups the planner's stores over one pool.
type Repository struct {
	pool *pgxpool.Pool

	users  *UserRepository
	events *EventRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{
		pool:   pool,
		users:  &UserRepository{pool: pool},
		events: &EventRepository{pool: pool},
	}, nil
}

func (r *Repository) Users() *UserRepository {
	return r.users
}

func (r *Repository) Events() *EventRepository {
	return r.events
}

// Ping checks that the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// MigrationState reports the newest applied schema version and whether a
// migration was interrupted.
func (r *Repository) MigrationState(ctx context.Context) (int64, bool, error) {
	var (
		version int64
		dirty   bool
	)
	err := r.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		return 0, false, fmt.Errorf("query migration version: %w", err)
	}
	return version, dirty, nil
}

// PoolStats summarizes the connection pool for health output.
func (r *Repository) PoolStats() map[string]any {
	stats := r.pool.Stat()
	return map[string]any{
		"max_connections":      stats.MaxConns(),
		"total_connections":    stats.TotalConns(),
		"idle_connections":     stats.IdleConns(),
		"acquired_connections": stats.AcquiredConns(),
	}
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
