package storage

import (
	"fmt"
	"strings"
)

// Open returns a Postgres repository when databaseURL is a postgres URL and a
// SQLite repository at sqlitePath otherwise.
func Open(databaseURL, sqlitePath string) (Repository, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		repo, err := NewPostgresRepository(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres history: %w", err)
		}
		return repo, nil
	}

	repo, err := NewSQLiteRepository(sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite history at %s: %w", sqlitePath, err)
	}
	return repo, nil
}
