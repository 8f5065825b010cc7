package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jholhewres/sumbot/pkg/sumbot/config"
)

// SQLiteStore implements MessageStore on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the message database with the given
// configuration and applies the schema.
func OpenSQLite(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		cfg.Path = "./data/sumbot.db"
	}
	if cfg.JournalMode == "" {
		cfg.JournalMode = "WAL"
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5000
	}

	// Ensure parent directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory %q: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=%s&_busy_timeout=%d", cfg.Path, cfg.JournalMode, cfg.BusyTimeout)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.Path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert appends a message and returns its row ID.
func (s *SQLiteStore) Insert(ctx context.Context, msg ChatMessage) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (source_number, source_name, timestamp, group_id, message)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.SourceNumber, msg.SourceName, msg.Timestamp, msg.GroupID, msg.Text,
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert message id: %w", err)
	}
	return id, nil
}

// RangeAfter implements the dual-mode range query described on MessageStore.
func (s *SQLiteStore) RangeAfter(ctx context.Context, groupID, afterToken string, limit int) ([]Line, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if afterToken == "" {
		// Recent tail: newest limit rows, re-ordered oldest-first.
		rows, err = s.db.QueryContext(ctx,
			`SELECT source_name, message FROM (
			     SELECT source_name, message, timestamp FROM messages
			     WHERE group_id = ?
			     ORDER BY timestamp DESC LIMIT ?
			 ) ORDER BY timestamp ASC`,
			groupID, limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT source_name, message FROM messages
			 WHERE group_id = ? AND timestamp > ?
			 ORDER BY timestamp ASC LIMIT ?`,
			groupID, afterToken, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.SourceName, &l.Text); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return lines, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    source_number TEXT NOT NULL DEFAULT 'N/A',
    source_name   TEXT NOT NULL DEFAULT 'N/A',
    timestamp     TEXT NOT NULL,
    group_id      TEXT NOT NULL,
    message       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_messages_group_ts ON messages(group_id, timestamp);
`
