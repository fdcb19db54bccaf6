// Package history keeps the daily exposure time series: one row per sector
// per day, appended whenever a snapshot is captured. The store backs the
// trend endpoints and is pruned on a retention schedule.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/aristath/lens/internal/modules/analysis"
)

// HistoryDB provides access to the exposure history database.
// Unlike the core databases it is opened directly with the sqlite3 driver
// and owns its schema.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the history database at path.
func Open(path string, log zerolog.Logger) (*HistoryDB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	h := &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}

	if err := h.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return h, nil
}

// NewHistoryDB wraps an existing connection (used by tests).
func NewHistoryDB(db *sql.DB, log zerolog.Logger) (*HistoryDB, error) {
	h := &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}

	if err := h.ensureSchema(); err != nil {
		return nil, err
	}

	return h, nil
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Conn returns the underlying connection.
func (h *HistoryDB) Conn() *sql.DB {
	return h.db
}

func (h *HistoryDB) ensureSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS sector_exposure_history (
			date             TEXT NOT NULL,  -- YYYY-MM-DD
			sector           TEXT NOT NULL,
			exposure_percent REAL NOT NULL,
			total_value      REAL NOT NULL,  -- portfolio total on that date
			PRIMARY KEY (date, sector)
		);
		CREATE INDEX IF NOT EXISTS idx_sector_history_sector ON sector_exposure_history(sector, date);
	`)
	if err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// SectorPoint is one day of one sector's exposure.
type SectorPoint struct {
	Date            string  `json:"date"`
	Sector          string  `json:"sector"`
	ExposurePercent float64 `json:"exposure_percent"`
	TotalValue      float64 `json:"total_value"`
}

// Append stores the sector rows of one analysis pass under the pass date.
// Re-capturing on the same day overwrites that day's rows.
func (h *HistoryDB) Append(result analysis.Result) error {
	date := result.CreatedAt.UTC().Format("2006-01-02")

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sector_exposure_history (date, sector, exposure_percent, total_value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (date, sector) DO UPDATE SET
			exposure_percent = excluded.exposure_percent,
			total_value = excluded.total_value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range result.SectorExposure {
		if _, err := stmt.Exec(date, row.Sector, row.ExposurePercent, result.TotalValue); err != nil {
			return fmt.Errorf("failed to insert history row for %s: %w", row.Sector, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history append: %w", err)
	}

	return nil
}

// SectorSeries returns one sector's exposure series over the last days,
// oldest first.
func (h *HistoryDB) SectorSeries(sector string, days int) ([]SectorPoint, error) {
	rows, err := h.db.Query(`
		SELECT date, sector, exposure_percent, total_value
		FROM sector_exposure_history
		WHERE sector = ? AND date >= ?
		ORDER BY date
	`, sector, cutoffDate(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query sector series: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// AllSeries returns every sector's series over the last days, oldest first.
func (h *HistoryDB) AllSeries(days int) ([]SectorPoint, error) {
	rows, err := h.db.Query(`
		SELECT date, sector, exposure_percent, total_value
		FROM sector_exposure_history
		WHERE date >= ?
		ORDER BY date, sector
	`, cutoffDate(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// TotalValueSeries returns the daily portfolio total, oldest first.
func (h *HistoryDB) TotalValueSeries(days int) ([]SectorPoint, error) {
	rows, err := h.db.Query(`
		SELECT date, '' AS sector, 0 AS exposure_percent, MAX(total_value) AS total_value
		FROM sector_exposure_history
		WHERE date >= ?
		GROUP BY date
		ORDER BY date
	`, cutoffDate(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query total value series: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// Prune deletes rows older than the retention window.
func (h *HistoryDB) Prune(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	result, err := h.db.Exec(
		"DELETE FROM sector_exposure_history WHERE date < ?",
		cutoffDate(retentionDays),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		h.log.Info().Int64("rows", deleted).Int("retention_days", retentionDays).Msg("History pruned")
	}

	return deleted, nil
}

func cutoffDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}

func scanPoints(rows *sql.Rows) ([]SectorPoint, error) {
	var points []SectorPoint
	for rows.Next() {
		var p SectorPoint
		if err := rows.Scan(&p.Date, &p.Sector, &p.ExposurePercent, &p.TotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return points, nil
}
