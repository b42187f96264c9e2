package cmd

import (
	"fmt"

	"github.com/mpetrik/photo-people/internal/config"
	"github.com/mpetrik/photo-people/internal/database"
	"github.com/mpetrik/photo-people/internal/database/postgres"
	"github.com/mpetrik/photo-people/internal/database/sqlite"
)

// openStore connects to the configured backend: PostgreSQL when
// DATABASE_URL is set, the local SQLite file otherwise.
func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.Database.URL != "" {
		store, err := postgres.Connect(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return store, nil
	}

	store, err := sqlite.Open(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %q: %w", cfg.Database.SQLitePath, err)
	}
	return store, nil
}
