// Package transcript persists agent conversations in SQLite.
package transcript

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/hamzaessahbaoui/agentic-toolkit/agent"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_messages (
	conversation_id TEXT    NOT NULL,
	seq             INTEGER NOT NULL,
	role            TEXT    NOT NULL,
	content         TEXT    NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (conversation_id, seq)
)`

// Store implements agent.Transcript on top of a SQLite database.
type Store struct {
	db *sql.DB
}

var _ agent.Transcript = (*Store)(nil)

// Open opens (or creates) the SQLite database at dsn and prepares the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database and prepares the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create transcript schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record saves message seq of a conversation. Recording the same position twice replaces it.
func (s *Store) Record(ctx context.Context, conversationID string, seq int, m agent.Message) error {
	const query = `
		INSERT OR REPLACE INTO conversation_messages (conversation_id, seq, role, content)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, conversationID, seq, string(m.Role), m.Content); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// Load returns the messages of a conversation in sequence order.
func (s *Store) Load(ctx context.Context, conversationID string) ([]agent.Message, error) {
	const query = `
		SELECT role, content FROM conversation_messages
		WHERE conversation_id = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []agent.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, agent.Message{Role: agent.Role(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return msgs, nil
}

// Conversations lists the stored conversation IDs, oldest first.
func (s *Store) Conversations(ctx context.Context) ([]string, error) {
	const query = `
		SELECT conversation_id FROM conversation_messages
		GROUP BY conversation_id
		ORDER BY MIN(created_at), conversation_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return ids, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
