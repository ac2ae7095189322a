package universe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Expected constituent count for a full S&P 500 list. The index holds a
// few more than 500 tickers because of multi-class listings.
const (
	minExpectedCount = 490
	maxExpectedCount = 510
)

// ErrHeaderMismatch is returned when the CSV header is not ticker,name,sector.
var ErrHeaderMismatch = errors.New("unexpected CSV header, want ticker,name,sector")

// LoaderOptions controls CSV validation behavior.
type LoaderOptions struct {
	// ValidateCount rejects files outside the expected S&P 500 size range.
	// Disable for partial or test universes.
	ValidateCount bool
}

// Loader reads stock universe CSV files
type Loader struct {
	opts LoaderOptions
	log  zerolog.Logger
}

// NewLoader creates a new universe loader
func NewLoader(opts LoaderOptions, log zerolog.Logger) *Loader {
	return &Loader{
		opts: opts,
		log:  log.With().Str("module", "universe_loader").Logger(),
	}
}

// LoadFile reads and validates a universe CSV file.
func (l *Loader) LoadFile(path string) ([]Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open universe file: %w", err)
	}
	defer f.Close()

	stocks, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.log.Info().Str("path", path).Int("count", len(stocks)).Msg("Loaded stock universe")
	return stocks, nil
}

// Load parses universe CSV data. The file must have a ticker,name,sector
// header. Rows with malformed tickers or duplicates are rejected with the
// offending row number.
func (l *Loader) Load(r io.Reader) ([]Stock, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty universe file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	if !validHeader(header) {
		return nil, fmt.Errorf("%w, got %q", ErrHeaderMismatch, strings.Join(header, ","))
	}

	var stocks []Stock
	seen := make(map[string]int)
	row := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse CSV: %w", row, err)
		}

		ticker := strings.ToUpper(strings.TrimSpace(record[0]))
		if !ValidTicker(ticker) {
			return nil, fmt.Errorf("row %d: invalid ticker %q", row, record[0])
		}

		if prev, dup := seen[ticker]; dup {
			return nil, fmt.Errorf("row %d: duplicate ticker %s (first seen at row %d)", row, ticker, prev)
		}
		seen[ticker] = row

		stocks = append(stocks, Stock{
			Ticker: ticker,
			Name:   strings.TrimSpace(record[1]),
			Sector: strings.TrimSpace(record[2]),
		})
	}

	if l.opts.ValidateCount {
		if len(stocks) < minExpectedCount || len(stocks) > maxExpectedCount {
			return nil, fmt.Errorf("expected %d-%d stocks, got %d",
				minExpectedCount, maxExpectedCount, len(stocks))
		}
	}

	return stocks, nil
}

func validHeader(header []string) bool {
	if len(header) != 3 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(header[0]), "ticker") &&
		strings.EqualFold(strings.TrimSpace(header[1]), "name") &&
		strings.EqualFold(strings.TrimSpace(header[2]), "sector")
}
