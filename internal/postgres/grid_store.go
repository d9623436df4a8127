// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wneessen/dist2coast/internal/geo"
	"github.com/wneessen/dist2coast/internal/grid"
)

const (
	tableName = "coast_distance"

	schema = `
		CREATE TABLE IF NOT EXISTS coast_distance (
			lat_q    INTEGER          NOT NULL,
			lon_q    INTEGER          NOT NULL,
			distance DOUBLE PRECISION NOT NULL CHECK (distance >= 0),
			PRIMARY KEY (lat_q, lon_q)
		)`
)

// GridStore implements grid.Lookup against the coast_distance table. Lattice coordinates
// are stored as integers quantized with the grid precision.
type GridStore struct {
	db        *DB
	precision int
}

// NewGridStore returns a GridStore for lattice coordinates with the given precision.
func NewGridStore(db *DB, precision int) *GridStore {
	return &GridStore{db: db, precision: precision}
}

// Name satisfies the grid.Lookup interface.
func (s *GridStore) Name() string {
	return "postgres:" + tableName
}

// EnsureSchema creates the coast_distance table if it does not exist.
func (s *GridStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", tableName, err)
	}
	return nil
}

// DistanceToCoast satisfies the grid.Lookup interface.
func (s *GridStore) DistanceToCoast(ctx context.Context, c geo.Coordinate) (float64, error) {
	key := grid.NewKey(c, s.precision)
	var dist float64
	err := s.db.Pool.QueryRow(ctx,
		`SELECT distance FROM coast_distance WHERE lat_q = $1 AND lon_q = $2`,
		key.LatQ, key.LonQ).Scan(&dist)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, grid.NotFoundError(c)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query distance to coast of %s: %w", c, err)
	}
	return dist, nil
}

// Count returns the number of lattice points in the table.
func (s *GridStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Pool.QueryRow(ctx, `SELECT count(*) FROM coast_distance`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lattice points: %w", err)
	}
	return count, nil
}

// Import replaces the content of the coast_distance table with the points of store.
func (s *GridStore) Import(ctx context.Context, store *grid.Store) (int64, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `TRUNCATE coast_distance`); err != nil {
		return 0, fmt.Errorf("failed to truncate %s table: %w", tableName, err)
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{tableName}, []string{"lat_q", "lon_q", "distance"},
		pgx.CopyFromRows(Rows(store, s.precision)))
	if err != nil {
		return 0, fmt.Errorf("failed to copy lattice points: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return copied, nil
}

// Rows returns the points of store as coast_distance rows.
func Rows(store *grid.Store, precision int) [][]any {
	rows := make([][]any, 0, store.Len())
	for coord, dist := range store.All() {
		key := grid.NewKey(coord, precision)
		rows = append(rows, []any{key.LatQ, key.LonQ, dist})
	}
	return rows
}
