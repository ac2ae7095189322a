package universe

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/sharpewatch/internal/database"

	_ "github.com/mattn/go-sqlite3"
)

// Repository handles stock universe database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new universe repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "universe").Logger(),
	}
}

// ReplaceAll swaps the stored universe for the given list in one transaction.
func (r *Repository) ReplaceAll(stocks []Stock) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM stocks"); err != nil {
			return fmt.Errorf("failed to clear stocks table: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339)
		stmt, err := tx.Prepare("INSERT INTO stocks (ticker, name, sector, loaded_at) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range stocks {
			if _, err := stmt.Exec(s.Ticker, s.Name, s.Sector, now); err != nil {
				return fmt.Errorf("failed to insert stock %s: %w", s.Ticker, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().Int("count", len(stocks)).Msg("Universe replaced")
	return nil
}

// GetAll returns every stock in the universe, ordered by ticker.
func (r *Repository) GetAll() ([]Stock, error) {
	rows, err := r.db.Query("SELECT ticker, name, sector FROM stocks ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.Ticker, &s.Name, &s.Sector); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	return stocks, nil
}

// GetByTicker returns one stock, or nil when the ticker is not in the universe.
func (r *Repository) GetByTicker(ticker string) (*Stock, error) {
	var s Stock
	query := "SELECT ticker, name, sector FROM stocks WHERE ticker = ?"
	err := r.db.QueryRow(query, ticker).Scan(&s.Ticker, &s.Name, &s.Sector)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	return &s, nil
}

// GetBySector returns all stocks in a sector, ordered by ticker.
func (r *Repository) GetBySector(sector string) ([]Stock, error) {
	rows, err := r.db.Query("SELECT ticker, name, sector FROM stocks WHERE sector = ? ORDER BY ticker", sector)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks by sector: %w", err)
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.Ticker, &s.Name, &s.Sector); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks: %w", err)
	}

	return stocks, nil
}

// SectorCounts returns the number of stocks per sector, sorted by sector name.
func (r *Repository) SectorCounts() ([]SectorCount, error) {
	rows, err := r.db.Query("SELECT sector, COUNT(*) FROM stocks GROUP BY sector")
	if err != nil {
		return nil, fmt.Errorf("failed to query sector counts: %w", err)
	}
	defer rows.Close()

	var counts []SectorCount
	for rows.Next() {
		var sc SectorCount
		if err := rows.Scan(&sc.Sector, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan sector count: %w", err)
		}
		counts = append(counts, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sector counts: %w", err)
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Sector < counts[j].Sector })
	return counts, nil
}

// Count returns the number of stocks in the universe.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM stocks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stocks: %w", err)
	}
	return n, nil
}

// SectorCount pairs a sector name with its constituent count.
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// Tickers returns just the ticker symbols, ordered alphabetically.
func (r *Repository) Tickers() ([]string, error) {
	stocks, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(stocks))
	for i, s := range stocks {
		tickers[i] = s.Ticker
	}
	return tickers, nil
}
