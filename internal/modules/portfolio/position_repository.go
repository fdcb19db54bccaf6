package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/utils"
	"github.com/rs/zerolog"
)

// PositionRepository handles position database operations
// Database: portfolio.db (positions table)
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "positions").Logger(),
	}
}

// GetAll returns all stored positions, largest value first.
func (r *PositionRepository) GetAll() ([]Position, error) {
	rows, err := r.db.Query(`
		SELECT ticker, name, quantity, last_price, current_value, updated_at
		FROM positions
		ORDER BY current_value DESC, ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		var name sql.NullString
		var updatedAt int64

		if err := rows.Scan(&p.Ticker, &name, &p.Quantity, &p.LastPrice, &p.CurrentValue, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if name.Valid {
			p.Name = name.String
		}
		p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// ReplaceAll swaps the whole positions table in one transaction, so a
// concurrent analysis pass never sees half a portfolio.
func (r *PositionRepository) ReplaceAll(positions []Position) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM positions"); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO positions (ticker, name, quantity, last_price, current_value, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare position insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range positions {
			if utils.NormalizeTicker(p.Ticker) == "" {
				continue
			}

			var name interface{}
			if p.Name != "" {
				name = p.Name
			}

			if _, err := stmt.Exec(p.Ticker, name, p.Quantity, p.LastPrice, p.CurrentValue, now); err != nil {
				return fmt.Errorf("failed to insert position %s: %w", p.Ticker, err)
			}
		}

		return nil
	})
}

// UpdateValue stores a revalued price and value for one position.
func (r *PositionRepository) UpdateValue(ticker string, lastPrice, currentValue float64) error {
	result, err := r.db.Exec(`
		UPDATE positions
		SET last_price = ?, current_value = ?, updated_at = ?
		WHERE ticker = ?
	`, lastPrice, currentValue, time.Now().Unix(), ticker)
	if err != nil {
		return fmt.Errorf("failed to update position %s: %w", ticker, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("position %s not found", ticker)
	}

	return nil
}

// TotalValue returns the summed market value of all positions.
func (r *PositionRepository) TotalValue() (float64, error) {
	var total sql.NullFloat64
	if err := r.db.QueryRow("SELECT SUM(current_value) FROM positions").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum position values: %w", err)
	}
	return total.Float64, nil
}

// Count returns the number of stored positions.
func (r *PositionRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM positions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}
