package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-go-golems/hexchat/pkg/chat"
)

const sqliteArchiveSchemaV1 = `
CREATE TABLE IF NOT EXISTS conversation_archive (
    slot TEXT PRIMARY KEY,
    payload_json TEXT NOT NULL,
    updated_at_ms INTEGER NOT NULL DEFAULT 0
);
`

const archiveSlot = "conversations"

// SQLiteArchive persists the collection in a SQLite database.
//
// The whole collection lives as one JSON payload in a single keyed row, so
// the slot contract (full overwrite, last-writer-wins) stays identical to
// the file backend while gaining durable SQLite storage.
type SQLiteArchive struct {
	mu     sync.Mutex
	dsn    string
	db     *sql.DB
	closed bool
}

var _ Archive = (*SQLiteArchive)(nil)

func NewSQLiteArchive(dsn string) (*SQLiteArchive, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite archive: empty dsn")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	a := &SQLiteArchive{dsn: dsn, db: db}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *SQLiteArchive) Load(ctx context.Context) ([]*chat.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	var payload string
	err := a.db.QueryRowContext(ctx, `SELECT payload_json FROM conversation_archive WHERE slot = ?`, archiveSlot).Scan(&payload)
	if err == sql.ErrNoRows {
		return []*chat.Conversation{}, nil
	}
	if err != nil {
		return []*chat.Conversation{}, err
	}

	conversations, err := decodeConversations([]byte(payload))
	if err != nil {
		return []*chat.Conversation{}, err
	}
	return conversations, nil
}

func (a *SQLiteArchive) Save(ctx context.Context, conversations []*chat.Conversation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureOpen(); err != nil {
		return err
	}

	payload, err := encodeConversations(conversations)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(
		ctx,
		`INSERT INTO conversation_archive (slot, payload_json, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET payload_json = excluded.payload_json, updated_at_ms = excluded.updated_at_ms`,
		archiveSlot,
		string(payload),
		time.Now().UnixMilli(),
	)
	return err
}

func (a *SQLiteArchive) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureOpen(); err != nil {
		return err
	}

	_, err := a.db.ExecContext(ctx, `DELETE FROM conversation_archive WHERE slot = ?`, archiveSlot)
	return err
}

func (a *SQLiteArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *SQLiteArchive) migrate() error {
	if a.db == nil {
		return fmt.Errorf("sqlite archive: db is nil")
	}
	if _, err := a.db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}
	if _, err := a.db.Exec(sqliteArchiveSchemaV1); err != nil {
		return err
	}
	return nil
}

func (a *SQLiteArchive) ensureOpen() error {
	if a.closed {
		return ErrArchiveClosed
	}
	if a.db == nil {
		return fmt.Errorf("sqlite archive: db is nil")
	}
	return nil
}

func SQLiteArchiveDSNForFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite archive: empty path")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path), nil
}
