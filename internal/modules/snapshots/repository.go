// Package snapshots persists complete analysis results, one msgpack blob per
// pass, so past exposure states can be inspected after reference data moves.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is one stored analysis pass.
type Snapshot struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	TotalValue   float64         `json:"total_value"`
	HoldingCount int             `json:"holding_count"`
	WarningCount int             `json:"warning_count"`
	Result       analysis.Result `json:"result,omitempty"`
}

// Repository handles snapshot database operations
// Database: snapshots.db (analysis_snapshots table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Insert stores a snapshot with its msgpack-encoded result payload.
func (r *Repository) Insert(snapshot Snapshot) error {
	payload, err := msgpack.Marshal(snapshot.Result)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO analysis_snapshots (id, created_at, total_value, holding_count, warning_count, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.CreatedAt.Unix(), snapshot.TotalValue, snapshot.HoldingCount, snapshot.WarningCount, payload)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", snapshot.ID, err)
	}

	return nil
}

// List returns snapshot metadata, newest first, without decoding payloads.
func (r *Repository) List(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, created_at, total_value, holding_count, warning_count
		FROM analysis_snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var createdAt int64

		if err := rows.Scan(&s.ID, &createdAt, &s.TotalValue, &s.HoldingCount, &s.WarningCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()

		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Get returns one snapshot with its full decoded result.
func (r *Repository) Get(id string) (*Snapshot, error) {
	var s Snapshot
	var createdAt int64
	var payload []byte

	err := r.db.QueryRow(`
		SELECT id, created_at, total_value, holding_count, warning_count, payload
		FROM analysis_snapshots
		WHERE id = ?
	`, id).Scan(&s.ID, &createdAt, &s.TotalValue, &s.HoldingCount, &s.WarningCount, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", id, err)
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()

	if err := msgpack.Unmarshal(payload, &s.Result); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload %s: %w", id, err)
	}

	return &s, nil
}

// Count returns the number of stored snapshots.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM analysis_snapshots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}
