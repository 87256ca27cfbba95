// Package testing provides test helpers shared by packages that sit above
// the history store.
package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aristath/stockintel/internal/database"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/rs/zerolog"
)

// NewTestDB creates a migrated history database in a temporary directory,
// opened with the scratch profile. The database is closed when the test
// finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "history.db"),
		Profile: database.ProfileCache,
		Name:    "history",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// NewTestHistory wraps NewTestDB in a history store and seeds it with
// series, keyed by symbol.
func NewTestHistory(t *testing.T, series map[string][]historical.DailyPrice) (*database.DB, *historical.HistoryDB) {
	t.Helper()

	db := NewTestDB(t)
	history := historical.NewHistoryDB(db.Conn(), zerolog.Nop())
	for symbol, prices := range series {
		if err := history.UpsertDailyPrices(context.Background(), symbol, prices); err != nil {
			t.Fatalf("Failed to seed prices for %s: %v", symbol, err)
		}
	}
	return db, history
}
