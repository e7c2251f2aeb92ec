// Package postgres persists world snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bernardosulzbach/dungeon-sub001/internal/config"
)

// ApplicationName tags the game's sessions in pg_stat_activity.
const ApplicationName = "dungeon"

// ErrSchemaMissing is returned by Ready when the snapshots table has not been
// created; run cmd/migrate against the database first.
var ErrSchemaMissing = errors.New("snapshots table missing")

// Pool is the connection pool behind the snapshot store.
type Pool struct {
	pool *pgxpool.Pool
}

// Open connects to the database described by cfg.
//
// Precondition: cfg passed config validation.
// Postcondition: Returns a pool that answered a ping, or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// Ready checks within timeout that the database answers and that the
// snapshots table exists.
//
// Postcondition: Returns nil when snapshots can be stored, an error wrapping
// ErrSchemaMissing when migrations have not run, or the connection error.
func (p *Pool) Ready(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass('snapshots') IS NOT NULL`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking snapshot schema: %w", err)
	}
	if !exists {
		return ErrSchemaMissing
	}
	return nil
}

// Snapshots returns the snapshot store backed by this pool.
func (p *Pool) Snapshots() *SnapshotRepository {
	return &SnapshotRepository{db: p.pool}
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}
