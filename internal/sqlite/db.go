package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", withBusyTimeout(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to a private in-memory database sees a fresh database.
	if dataSourceName == ":memory:" || (strings.Contains(dataSourceName, "mode=memory") && !strings.Contains(dataSourceName, "cache=shared")) {
		db.SetMaxOpenConns(1)
	}

	return &DB{db}, nil
}

// busyTimeoutMillis applies to every pooled connection through the DSN.
const busyTimeoutMillis = 5000

func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, busyTimeoutMillis)
}

const schema = `
CREATE TABLE IF NOT EXISTS lifecycle_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id TEXT,
    operation TEXT NOT NULL CHECK(operation IN ('start', 'update', 'end')),
    event_type TEXT NOT NULL CHECK(event_type IN ('started', 'updated', 'ended', 'failed')),
    code TEXT,
    summary TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_activity ON lifecycle_events(activity_id);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON lifecycle_events(created_at);
`

// RunMigrations creates the schema. It is idempotent.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
