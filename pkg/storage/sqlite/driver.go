// Package sqlite provides a storage.Driver backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage"
)

// Timestamps are stored as UTC unix nanoseconds so ordering and range
// filters are plain integer comparisons.
const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    user_message     TEXT    NOT NULL,
    ai_response      TEXT    NOT NULL,
    timestamp        INTEGER NOT NULL,
    session_id       VARCHAR(100),
    user_ip          VARCHAR(45),
    response_time_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_chat_messages_timestamp ON chat_messages(timestamp);
CREATE INDEX IF NOT EXISTS idx_chat_messages_user_ip ON chat_messages(user_ip);`

const selectColumns = `id, user_message, ai_response, timestamp, session_id, user_ip, response_time_ms`

// Driver is a SQLite storage.Driver.
type Driver struct {
	db *sql.DB
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver opens (creating if needed) the database at dbPath and applies the schema.
// Use ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// every pooled connection to ":memory:" would otherwise get its own empty database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Append inserts a turn and returns it with its assigned ID.
func (d *Driver) Append(ctx context.Context, turn *llm.ConversationTurn) (*llm.ConversationTurn, error) {
	if turn == nil {
		return nil, fmt.Errorf("cannot store nil turn")
	}

	query := `
        INSERT INTO chat_messages (user_message, ai_response, timestamp, session_id, user_ip, response_time_ms)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`

	stored := *turn
	err := d.db.QueryRowContext(ctx, query,
		stored.UserMessage,
		stored.AIResponse,
		stored.Timestamp.UTC().UnixNano(),
		stored.SessionID,
		nullString(stored.ClientIP),
		stored.ResponseTimeMs,
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("insert turn: %w", err)
	}

	return &stored, nil
}

// Get retrieves a turn by ID.
func (d *Driver) Get(ctx context.Context, id int64) (*llm.ConversationTurn, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM chat_messages WHERE id = ?`, id)

	turn, err := scanTurn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get turn: %w", err)
	}
	return turn, nil
}

// ListBySession returns a session's turns, oldest first.
func (d *Driver) ListBySession(ctx context.Context, sessionID string) ([]*llm.ConversationTurn, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM chat_messages
        WHERE session_id = ?
        ORDER BY timestamp ASC, id ASC`

	return d.query(ctx, query, sessionID)
}

// ListBySessionInRange returns a session's turns within [start, end], oldest first.
func (d *Driver) ListBySessionInRange(ctx context.Context, sessionID string, start, end time.Time) ([]*llm.ConversationTurn, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM chat_messages
        WHERE session_id = ? AND timestamp BETWEEN ? AND ?
        ORDER BY timestamp ASC, id ASC`

	return d.query(ctx, query, sessionID, start.UTC().UnixNano(), end.UTC().UnixNano())
}

// CountBySession returns the number of turns in a session.
func (d *Driver) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return count, nil
}

// ListRecent returns at most limit turns, newest first.
func (d *Driver) ListRecent(ctx context.Context, limit int) ([]*llm.ConversationTurn, error) {
	if limit <= 0 {
		return []*llm.ConversationTurn{}, nil
	}

	query := `
        SELECT ` + selectColumns + `
        FROM chat_messages
        ORDER BY timestamp DESC, id DESC
        LIMIT ?`

	return d.query(ctx, query, limit)
}

// ListByClientIP returns the turns recorded from clientIP, newest first.
func (d *Driver) ListByClientIP(ctx context.Context, clientIP string) ([]*llm.ConversationTurn, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM chat_messages
        WHERE user_ip = ?
        ORDER BY timestamp DESC, id DESC`

	return d.query(ctx, query, clientIP)
}

// DeleteBySession removes every turn in a session.
func (d *Driver) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) query(ctx context.Context, query string, args ...any) ([]*llm.ConversationTurn, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*llm.ConversationTurn, 0)
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTurn(s scanner) (*llm.ConversationTurn, error) {
	var (
		turn      llm.ConversationTurn
		ts        int64
		sessionID sql.NullString
		clientIP  sql.NullString
		latency   sql.NullInt64
	)

	if err := s.Scan(&turn.ID, &turn.UserMessage, &turn.AIResponse, &ts, &sessionID, &clientIP, &latency); err != nil {
		return nil, err
	}

	turn.Timestamp = time.Unix(0, ts).UTC()
	turn.SessionID = sessionID.String
	turn.ClientIP = clientIP.String
	turn.ResponseTimeMs = latency.Int64

	return &turn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
