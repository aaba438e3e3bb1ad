package shared

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens a connection to a SQLite database at the specified path.
//
// The path can be ":memory:" for an in-memory database. File databases are opened in WAL mode with a
// busy timeout so several spotx processes can share one token cache.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
//
// In-memory databases must keep a single connection, since every new connection opens an empty database.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
