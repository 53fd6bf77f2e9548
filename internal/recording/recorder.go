package recording

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/brainsim/internal/brain"
)

// DBFile is the recorder database filename inside the data directory.
const DBFile = "brainsim.db"

// Run describes one recorded simulation run.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Seed       int64     `json:"seed"`
	ConfigYAML string    `json:"config_yaml,omitempty"`
	Snapshots  int       `json:"snapshots"`
	Spoken     int       `json:"spoken"`
}

// Snapshot is one recorded status sample.
type Snapshot struct {
	Tick      int64   `json:"tick"`
	Spikes    int64   `json:"spikes"`
	Dopamine  float64 `json:"dopamine"`
	Baseline  float64 `json:"baseline"`
	Frozen    int     `json:"frozen"`
	AvgWeight float64 `json:"avg_weight"`
	Context   uint32  `json:"context"`
}

// SnapshotFromStatus converts a network status into a snapshot row.
func SnapshotFromStatus(st brain.Status) Snapshot {
	return Snapshot{
		Tick:      st.Ticks,
		Spikes:    st.Spikes,
		Dopamine:  st.Dopamine,
		Baseline:  st.Baseline,
		Frozen:    st.FrozenSynapses,
		AvgWeight: st.AvgAbsWeight,
		Context:   st.Context,
	}
}

// Recorder writes run telemetry to SQLite. It is safe for concurrent use;
// the single connection serializes writers.
type Recorder struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates dir/brainsim.db.
func Open(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Recorder{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (r *Recorder) Path() string { return r.dbPath }

// StartRun registers a new run and returns its ID.
func (r *Recorder) StartRun(ctx context.Context, seed int64, configYAML string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, seed, config_yaml) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), seed, configYAML)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// RecordSnapshot stores a status sample. A second sample at the same tick replaces the first.
func (r *Recorder) RecordSnapshot(ctx context.Context, runID string, s Snapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (run_id, tick, spikes, dopamine, baseline, frozen, avg_weight, context)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.Tick, s.Spikes, s.Dopamine, s.Baseline, s.Frozen, s.AvgWeight, int64(s.Context))
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}

// RecordSpoken stores one spoken symbol.
func (r *Recorder) RecordSpoken(ctx context.Context, runID string, tick int64, modality, symbol string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO spoken (run_id, tick, modality, symbol) VALUES (?, ?, ?, ?)`,
		runID, tick, modality, symbol)
	if err != nil {
		return fmt.Errorf("failed to record spoken symbol: %w", err)
	}
	return nil
}

// RecordReward stores one externally delivered reward.
func (r *Recorder) RecordReward(ctx context.Context, runID string, tick int64, amount float64, source string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rewards (run_id, tick, amount, source) VALUES (?, ?, ?, ?)`,
		runID, tick, amount, source)
	if err != nil {
		return fmt.Errorf("failed to record reward: %w", err)
	}
	return nil
}

// Runs lists recorded runs, newest first.
func (r *Recorder) Runs(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.seed, COALESCE(r.config_yaml, ''),
		       (SELECT COUNT(*) FROM snapshots s WHERE s.run_id = r.id),
		       (SELECT COUNT(*) FROM spoken p WHERE p.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		if err := rows.Scan(&run.ID, &started, &run.Seed, &run.ConfigYAML, &run.Snapshots, &run.Spoken); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Snapshots returns the snapshots of a run in tick order.
func (r *Recorder) Snapshots(ctx context.Context, runID string) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tick, spikes, dopamine, baseline, frozen, avg_weight, context
		FROM snapshots WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var ctxMask int64
		if err := rows.Scan(&s.Tick, &s.Spikes, &s.Dopamine, &s.Baseline, &s.Frozen, &s.AvgWeight, &ctxMask); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Context = uint32(ctxMask)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SpokenSymbols returns the spoken symbols of a run, concatenated in tick order.
func (r *Recorder) SpokenSymbols(ctx context.Context, runID string) (string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT symbol FROM spoken WHERE run_id = ? ORDER BY tick, rowid`, runID)
	if err != nil {
		return "", fmt.Errorf("failed to query spoken symbols: %w", err)
	}
	defer rows.Close()

	var out []byte
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return "", fmt.Errorf("failed to scan spoken symbol: %w", err)
		}
		out = append(out, sym...)
	}
	return string(out), rows.Err()
}

// RewardTotal returns the sum of recorded rewards for a run.
func (r *Recorder) RewardTotal(ctx context.Context, runID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM rewards WHERE run_id = ?`, runID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum rewards: %w", err)
	}
	return total, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
