package cmd

import (
	"fmt"

	"github.com/sstent/garminnotion/internal/config"
	"github.com/sstent/garminnotion/internal/db"
	"github.com/sstent/garminnotion/internal/notion"
	"github.com/sstent/garminnotion/internal/sleepsync"
	"go.uber.org/zap"
)

// store is a target database the commands read from and write to
type store interface {
	sleepsync.Sink
	sleepsync.Lister
}

// openStore opens the sink selected by cfg. The returned func releases it.
func openStore(cfg *config.Config, logger *zap.Logger) (store, func() error, error) {
	switch cfg.Sink {
	case config.SinkSQLite:
		database, err := db.NewDatabase(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Debug("Using SQLite sink", zap.String("path", cfg.DatabasePath))
		return database, database.Close, nil
	default:
		client := notion.NewClient(cfg.NotionBaseURL, cfg.NotionToken, logger)
		logger.Debug("Using Notion sink", zap.String("database_id", cfg.SleepDatabaseID))
		return notion.NewSleepTable(client, cfg.SleepDatabaseID), func() error { return nil }, nil
	}
}
