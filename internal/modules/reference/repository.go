// Package reference manages the lookup tables the analysis engine is built
// from: sector classification, canonical ticker aliases, and ETF constituent
// weights. Tables live in reference.db and are curated via the API or
// refreshed wholesale from the upstream reference service.
package reference

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/lens/internal/database"
	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/utils"
	"github.com/rs/zerolog"
)

// Repository handles reference database operations
// Database: reference.db (sector_map, ticker_aliases, etf_constituents tables)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new reference repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "reference").Logger(),
	}
}

// SectorMap returns the full ticker -> sector table.
func (r *Repository) SectorMap() (map[string]string, error) {
	rows, err := r.db.Query("SELECT ticker, sector FROM sector_map")
	if err != nil {
		return nil, fmt.Errorf("failed to query sector map: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var ticker, sector string
		if err := rows.Scan(&ticker, &sector); err != nil {
			return nil, fmt.Errorf("failed to scan sector row: %w", err)
		}
		result[ticker] = sector
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sector map: %w", err)
	}

	return result, nil
}

// ReplaceSectorMap swaps the whole sector table in one transaction.
func (r *Repository) ReplaceSectorMap(sectors map[string]string) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM sector_map"); err != nil {
			return fmt.Errorf("failed to clear sector map: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO sector_map (ticker, sector, updated_at) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare sector insert: %w", err)
		}
		defer stmt.Close()

		for ticker, sector := range sectors {
			key := utils.NormalizeTicker(ticker)
			if key == "" || sector == "" {
				continue
			}
			if _, err := stmt.Exec(key, sector, now); err != nil {
				return fmt.Errorf("failed to insert sector for %s: %w", key, err)
			}
		}

		return nil
	})
}

// Aliases returns the full alias -> canonical table.
func (r *Repository) Aliases() (map[string]string, error) {
	rows, err := r.db.Query("SELECT alias, canonical FROM ticker_aliases")
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker aliases: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return nil, fmt.Errorf("failed to scan alias row: %w", err)
		}
		result[alias] = canonical
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticker aliases: %w", err)
	}

	return result, nil
}

// ReplaceAliases swaps the whole alias table in one transaction.
// Self-mappings are skipped; identity is the default.
func (r *Repository) ReplaceAliases(aliases map[string]string) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM ticker_aliases"); err != nil {
			return fmt.Errorf("failed to clear ticker aliases: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO ticker_aliases (alias, canonical, updated_at) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare alias insert: %w", err)
		}
		defer stmt.Close()

		for alias, canonical := range aliases {
			a := utils.NormalizeTicker(alias)
			c := utils.NormalizeTicker(canonical)
			if a == "" || c == "" || a == c {
				continue
			}
			if _, err := stmt.Exec(a, c, now); err != nil {
				return fmt.Errorf("failed to insert alias %s: %w", a, err)
			}
		}

		return nil
	})
}

// Constituents returns all ETF constituent lists keyed by fund ticker.
func (r *Repository) Constituents() (map[string][]analysis.ETFConstituent, error) {
	rows, err := r.db.Query(`
		SELECT etf_ticker, symbol, name, weight_percent
		FROM etf_constituents
		ORDER BY etf_ticker, weight_percent DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ETF constituents: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]analysis.ETFConstituent)
	for rows.Next() {
		var c analysis.ETFConstituent
		var name sql.NullString

		if err := rows.Scan(&c.ETFTicker, &c.Symbol, &name, &c.WeightPercent); err != nil {
			return nil, fmt.Errorf("failed to scan constituent row: %w", err)
		}
		if name.Valid {
			c.Name = name.String
		}

		result[c.ETFTicker] = append(result[c.ETFTicker], c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ETF constituents: %w", err)
	}

	return result, nil
}

// ConstituentsFor returns one fund's constituent list, heaviest first.
// An unknown fund returns an empty list, not an error.
func (r *Repository) ConstituentsFor(etfTicker string) ([]analysis.ETFConstituent, error) {
	rows, err := r.db.Query(`
		SELECT etf_ticker, symbol, name, weight_percent
		FROM etf_constituents
		WHERE etf_ticker = ?
		ORDER BY weight_percent DESC
	`, utils.NormalizeTicker(etfTicker))
	if err != nil {
		return nil, fmt.Errorf("failed to query constituents for %s: %w", etfTicker, err)
	}
	defer rows.Close()

	var result []analysis.ETFConstituent
	for rows.Next() {
		var c analysis.ETFConstituent
		var name sql.NullString

		if err := rows.Scan(&c.ETFTicker, &c.Symbol, &name, &c.WeightPercent); err != nil {
			return nil, fmt.Errorf("failed to scan constituent row: %w", err)
		}
		if name.Valid {
			c.Name = name.String
		}

		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constituents for %s: %w", etfTicker, err)
	}

	return result, nil
}

// ReplaceConstituentsFor swaps one fund's constituent list in a transaction.
func (r *Repository) ReplaceConstituentsFor(etfTicker string, constituents []analysis.ETFConstituent) error {
	etf := utils.NormalizeTicker(etfTicker)
	if etf == "" {
		return fmt.Errorf("ETF ticker is required")
	}

	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM etf_constituents WHERE etf_ticker = ?", etf); err != nil {
			return fmt.Errorf("failed to clear constituents for %s: %w", etf, err)
		}

		return insertConstituents(tx, etf, constituents, now)
	})
}

// ReplaceAllConstituents swaps every fund's constituent list in one
// transaction, so the analysis engine never sees a partial table.
func (r *Repository) ReplaceAllConstituents(tables map[string][]analysis.ETFConstituent) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM etf_constituents"); err != nil {
			return fmt.Errorf("failed to clear ETF constituents: %w", err)
		}

		for etf, list := range tables {
			key := utils.NormalizeTicker(etf)
			if key == "" {
				continue
			}
			if err := insertConstituents(tx, key, list, now); err != nil {
				return err
			}
		}

		return nil
	})
}

// ETFTickers returns the fund tickers with known constituent data.
func (r *Repository) ETFTickers() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT etf_ticker FROM etf_constituents ORDER BY etf_ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to query ETF tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ETF ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ETF tickers: %w", err)
	}

	return tickers, nil
}

// Counts returns table sizes for status reporting.
func (r *Repository) Counts() (sectors, aliases, constituents int, err error) {
	if err = r.db.QueryRow("SELECT COUNT(*) FROM sector_map").Scan(&sectors); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count sector map: %w", err)
	}
	if err = r.db.QueryRow("SELECT COUNT(*) FROM ticker_aliases").Scan(&aliases); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count ticker aliases: %w", err)
	}
	if err = r.db.QueryRow("SELECT COUNT(*) FROM etf_constituents").Scan(&constituents); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count ETF constituents: %w", err)
	}
	return sectors, aliases, constituents, nil
}

func insertConstituents(tx *sql.Tx, etf string, constituents []analysis.ETFConstituent, now int64) error {
	stmt, err := tx.Prepare(`
		INSERT INTO etf_constituents (etf_ticker, symbol, name, weight_percent, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (etf_ticker, symbol) DO UPDATE SET
			name = excluded.name,
			weight_percent = excluded.weight_percent,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare constituent insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range constituents {
		symbol := utils.NormalizeTicker(c.Symbol)
		if symbol == "" {
			continue
		}

		var name interface{}
		if c.Name != "" {
			name = c.Name
		}

		if _, err := stmt.Exec(etf, symbol, name, c.WeightPercent, now); err != nil {
			return fmt.Errorf("failed to insert constituent %s of %s: %w", symbol, etf, err)
		}
	}

	return nil
}
