// Package recording stores run telemetry in SQLite: status snapshots,
// rewards and spoken symbols, keyed by run. It never stores network state,
// so a recorded run can be inspected but not resumed.
package recording

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the run recorder.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    seed INTEGER NOT NULL,
    config_yaml TEXT
);

-- Periodic status snapshots
CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    spikes INTEGER NOT NULL,
    dopamine REAL NOT NULL,
    baseline REAL NOT NULL,
    frozen INTEGER NOT NULL,
    avg_weight REAL NOT NULL,
    context INTEGER NOT NULL,
    PRIMARY KEY (run_id, tick)
);

CREATE TABLE IF NOT EXISTS spoken (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    modality TEXT NOT NULL,
    symbol TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spoken_run ON spoken(run_id, tick);

CREATE TABLE IF NOT EXISTS rewards (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    amount REAL NOT NULL,
    source TEXT NOT NULL  -- 'key', 'mcp', 'train'
);
CREATE INDEX IF NOT EXISTS idx_rewards_run ON rewards(run_id, tick);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the schema on a fresh database and rejects databases
// written by a newer brainsim.
func InitSchema(ctx context.Context, db *sql.DB) error {
	current, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
