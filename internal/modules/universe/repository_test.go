package universe

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE stocks (
			ticker TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sector TEXT NOT NULL,
			loaded_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	return db
}

func testStocks() []Stock {
	return []Stock{
		{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "Information Technology"},
		{Ticker: "XOM", Name: "Exxon Mobil", Sector: "Energy"},
	}
}

func TestReplaceAllAndGetAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.ReplaceAll(testStocks()))

	stocks, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, stocks, 3)
	assert.Equal(t, "AAPL", stocks[0].Ticker, "results should be ordered by ticker")

	// A second load replaces, not appends
	require.NoError(t, repo.ReplaceAll(testStocks()[:1]))
	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetByTicker(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.ReplaceAll(testStocks()))

	stock, err := repo.GetByTicker("XOM")
	require.NoError(t, err)
	require.NotNil(t, stock)
	assert.Equal(t, "Energy", stock.Sector)

	missing, err := repo.GetByTicker("ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetBySector(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.ReplaceAll(testStocks()))

	tech, err := repo.GetBySector("Information Technology")
	require.NoError(t, err)
	assert.Len(t, tech, 2)

	none, err := repo.GetBySector("Utilities")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSectorCounts(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.ReplaceAll(testStocks()))

	counts, err := repo.SectorCounts()
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, SectorCount{Sector: "Energy", Count: 1}, counts[0])
	assert.Equal(t, SectorCount{Sector: "Information Technology", Count: 2}, counts[1])
}

func TestTickers(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.ReplaceAll(testStocks()))

	tickers, err := repo.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "XOM"}, tickers)
}
