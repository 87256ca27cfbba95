package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/database"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the history database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	if err := historyDB.Migrate(); err != nil {
		historyDB.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", historyDB.Name(), err)
	}

	log.Info().Str("path", historyDB.Path()).Msg("History database initialized")

	return &Container{
		HistoryDB:    historyDB,
		HistoryStore: historical.NewHistoryDB(historyDB.Conn(), log),
	}, nil
}
