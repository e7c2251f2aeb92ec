package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/snapshot"
)

// SnapshotRepository is a snapshot.Store backed by the snapshots table.
// Obtain one from Pool.Snapshots.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

// Save upserts data under name.
//
// Postcondition: The row for name holds data and a fresh saved_at.
func (r *SnapshotRepository) Save(ctx context.Context, name string, data []byte) error {
	if err := snapshot.ValidateName(name); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO snapshots (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, saved_at = NOW()`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", name, err)
	}
	return nil
}

// Load returns the data saved under name.
//
// Postcondition: Returns an error wrapping snapshot.ErrNotFound if no row matches.
func (r *SnapshotRepository) Load(ctx context.Context, name string) ([]byte, error) {
	if err := snapshot.ValidateName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM snapshots WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", snapshot.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %q: %w", name, err)
	}
	return data, nil
}

// List returns all saved names in ascending order.
func (r *SnapshotRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM snapshots ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot names: %w", err)
	}
	return names, nil
}

// Delete removes the snapshot saved under name.
//
// Postcondition: Returns an error wrapping snapshot.ErrNotFound if no row matched.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", snapshot.ErrNotFound, name)
	}
	return nil
}
