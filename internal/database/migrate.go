package database

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent and the
// SQL is shared between SQLite and postgres.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS subscribers (
		id            TEXT PRIMARY KEY,
		topic         TEXT NOT NULL DEFAULT '',
		morning       TEXT NOT NULL DEFAULT '',
		midday        TEXT NOT NULL DEFAULT '',
		afternoon     TEXT NOT NULL DEFAULT '',
		evening       TEXT NOT NULL DEFAULT '',
		contact       TEXT NOT NULL DEFAULT '',
		registered_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_subscribers_morning ON subscribers(morning)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_midday ON subscribers(midday)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_afternoon ON subscribers(afternoon)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_evening ON subscribers(evening)`,

	`CREATE TABLE IF NOT EXISTS sent_passages (
		subscriber_id TEXT NOT NULL,
		day           TEXT NOT NULL,
		ref           TEXT NOT NULL,
		PRIMARY KEY (subscriber_id, day, ref)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sent_passages_day ON sent_passages(day)`,
}
