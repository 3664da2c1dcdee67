package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/solacq/solacq/internal/models"
)

// PostgresWriter implements Writer on top of PostgreSQL.
//
// The connection is opened, used and closed within a single cycle, so
// no connection state is shared across cycles. Table creation is
// idempotent and never destroys existing rows.
type PostgresWriter struct {
	connStr string
}

// NewPostgresWriter creates a writer for the given connection string.
// The string is in the usual keyword form:
// "host=... port=... user=... password=... dbname=... sslmode=...".
func NewPostgresWriter(connStr string) *PostgresWriter {
	return &PostgresWriter{connStr: connStr}
}

var createTableStmts = []string{
	`CREATE TABLE IF NOT EXISTS inverter_data (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		inverter_number INTEGER NOT NULL,
		num_cells INTEGER NOT NULL,
		inverter_power DOUBLE PRECISION NOT NULL,
		yield_day DOUBLE PRECISION NOT NULL,
		yield_total DOUBLE PRECISION NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS inverter_sum_data (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		power_sum DOUBLE PRECISION NOT NULL,
		yield_day_sum DOUBLE PRECISION NOT NULL,
		yield_total_sum DOUBLE PRECISION NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS energy_meter_data (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		total_out DOUBLE PRECISION NOT NULL,
		total_in DOUBLE PRECISION NOT NULL,
		power_in DOUBLE PRECISION NOT NULL,
		meter_number TEXT NOT NULL)`,
}

// WriteCycle writes one row per inverter, one aggregate row and, when a
// meter snapshot is present, one meter row — all in one transaction.
func (w *PostgresWriter) WriteCycle(ctx context.Context, snap *models.InstallationSnapshot, meter *models.MeterSnapshot) error {
	if snap == nil && meter == nil {
		return nil
	}

	db, err := sql.Open("postgres", w.connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, stmt := range createTableStmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // rollback if not committed

	if snap != nil {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO inverter_data
			(timestamp, inverter_number, num_cells, inverter_power, yield_day, yield_total)
			VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, inv := range snap.Inverters {
			if _, err := stmt.ExecContext(ctx, snap.Timestamp, i, len(inv.Cells),
				inv.Power, inv.YieldDay, inv.YieldTotal); err != nil {
				return fmt.Errorf("failed to insert inverter row: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inverter_sum_data (timestamp, power_sum, yield_day_sum, yield_total_sum)
			VALUES ($1, $2, $3, $4)`,
			snap.Timestamp, snap.PowerSum, snap.YieldDaySum, snap.YieldTotalSum); err != nil {
			return fmt.Errorf("failed to insert aggregate row: %w", err)
		}
	}

	if meter != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO energy_meter_data (timestamp, total_out, total_in, power_in, meter_number)
			VALUES ($1, $2, $3, $4, $5)`,
			meter.Timestamp, meter.TotalOut, meter.TotalIn, meter.PowerIn, meter.MeterID); err != nil {
			return fmt.Errorf("failed to insert meter row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close is a no-op: connections are scoped to WriteCycle.
func (w *PostgresWriter) Close() error {
	return nil
}

// Compile-time interface implementation check
var _ Writer = (*PostgresWriter)(nil)
