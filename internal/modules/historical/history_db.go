// Package historical stores daily price history and turns it into the
// aligned series consumed by the optimizer and the regime classifier.
package historical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryDB provides access to historical price data
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// UpsertDailyPrices inserts or replaces the bars of a symbol in one transaction
func (h *HistoryDB) UpsertDailyPrices(ctx context.Context, symbol string, prices []DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be no-op if Commit succeeds

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO daily_prices
		(symbol, date, open, high, low, close, adjusted_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		adjusted := sql.NullFloat64{Float64: p.AdjClose, Valid: p.AdjClose > 0}
		_, err := stmt.ExecContext(ctx,
			symbol,
			truncateDay(p.Date).Unix(),
			p.Open,
			p.High,
			p.Low,
			p.Close,
			adjusted,
			p.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert daily price for %s on %s: %w", symbol, p.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	h.log.Debug().
		Str("symbol", symbol).
		Int("count", len(prices)).
		Msg("Upserted daily prices")

	return nil
}

// GetDailyPrices returns the bars of a symbol between from and to inclusive,
// oldest first. A zero bound is open.
func (h *HistoryDB) GetDailyPrices(ctx context.Context, symbol string, from, to time.Time) ([]DailyPrice, error) {
	query := `
		SELECT date, open, high, low, close, adjusted_close, volume
		FROM daily_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	lower := int64(0)
	if !from.IsZero() {
		lower = truncateDay(from).Unix()
	}
	upper := int64(1<<63 - 1)
	if !to.IsZero() {
		upper = truncateDay(to).Unix()
	}

	rows, err := h.db.QueryContext(ctx, query, symbol, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		var dateUnix int64
		var adjusted sql.NullFloat64
		var volume sql.NullInt64

		if err := rows.Scan(&dateUnix, &p.Open, &p.High, &p.Low, &p.Close, &adjusted, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		p.Date = time.Unix(dateUnix, 0).UTC()
		if adjusted.Valid {
			p.AdjClose = adjusted.Float64
		}
		if volume.Valid {
			p.Volume = volume.Int64
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return prices, nil
}

// GetLatestDate returns the newest stored bar date of a symbol. ok is false
// when nothing is stored yet.
func (h *HistoryDB) GetLatestDate(ctx context.Context, symbol string) (latest time.Time, ok bool, err error) {
	var dateUnix sql.NullInt64
	err = h.db.QueryRowContext(ctx, "SELECT MAX(date) FROM daily_prices WHERE symbol = ?", symbol).Scan(&dateUnix)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get latest date for %s: %w", symbol, err)
	}
	if !dateUnix.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(dateUnix.Int64, 0).UTC(), true, nil
}

// SymbolCoverage summarises what is stored for one symbol
type SymbolCoverage struct {
	Symbol string    `json:"symbol"`
	Bars   int       `json:"bars"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
}

// ListCoverage returns per-symbol bar counts and date ranges
func (h *HistoryDB) ListCoverage(ctx context.Context) ([]SymbolCoverage, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT symbol, COUNT(*), MIN(date), MAX(date)
		FROM daily_prices
		GROUP BY symbol
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}
	defer rows.Close()

	var out []SymbolCoverage
	for rows.Next() {
		var c SymbolCoverage
		var first, last int64
		if err := rows.Scan(&c.Symbol, &c.Bars, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan coverage: %w", err)
		}
		c.First = time.Unix(first, 0).UTC()
		c.Last = time.Unix(last, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordSyncRun stores the outcome of a sync pass
func (h *HistoryDB) RecordSyncRun(ctx context.Context, run SyncRun) error {
	var runErr sql.NullString
	if run.Error != "" {
		runErr = sql.NullString{String: run.Error, Valid: true}
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, started_at, finished_at, symbols, succeeded, failed, rows_written, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Symbols, run.Succeeded, run.Failed, run.RowsWritten, runErr)
	if err != nil {
		return fmt.Errorf("failed to record sync run %s: %w", run.ID, err)
	}
	return nil
}

// GetRecentSyncRuns returns the newest sync runs first
func (h *HistoryDB) GetRecentSyncRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, symbols, succeeded, failed, rows_written, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var started, finished int64
		var runErr sql.NullString
		if err := rows.Scan(&r.ID, &started, &finished, &r.Symbols, &r.Succeeded, &r.Failed, &r.RowsWritten, &runErr); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		r.Error = runErr.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastSyncRun returns the newest sync run, or nil when none was recorded
func (h *HistoryDB) LastSyncRun(ctx context.Context) (*SyncRun, error) {
	runs, err := h.GetRecentSyncRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

var errNoPrices = errors.New("no stored prices")
