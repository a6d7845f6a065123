package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/chatline-go/internal/logger"
)

// TranscriptDB persists conversation snapshots to SQLite. Each snapshot
// replaces the session's rows wholesale, so the stored transcript always
// mirrors the committed history and nothing else.
type TranscriptDB struct {
	db *sql.DB
}

// OpenTranscript opens (and creates on first use) the transcript database.
func OpenTranscript(path string) (*TranscriptDB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT,
        position INTEGER,
        role TEXT,
        content TEXT,
        created_at DATETIME
    );`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create transcript table: %w", err)
	}
	logger.L.Info("transcript db ready", "path", path)
	return &TranscriptDB{db: db}, nil
}

// SaveSnapshot replaces the stored transcript for a session with the given
// serialized history.
func (t *TranscriptDB) SaveSnapshot(sessionID string, entries []Entry) error {
	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?;`, sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear session rows: %w", err)
	}
	now := time.Now()
	for i, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO messages (session_id, position, role, content, created_at) VALUES (?,?,?,?,?);`,
			sessionID, i, e.Role, e.Content, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns the stored transcript of a session in order.
func (t *TranscriptDB) LoadSnapshot(sessionID string) ([]Entry, error) {
	rows, err := t.db.Query(
		`SELECT role, content FROM messages WHERE session_id = ? ORDER BY position ASC;`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Role, &e.Content); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (t *TranscriptDB) Close() error {
	return t.db.Close()
}
