package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/creastudio/studiogate/internal/model"
)

// Spool is a local SQLite sink for AI session records, used when no Postgres
// pool and no Supabase REST sink are configured (dev and offline runs). The
// schema mirrors ai_sessions; rows can be replayed into the real table later.
type Spool struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSpool opens (or creates) a spool file and ensures its schema.
func OpenSpool(path string, logger *slog.Logger) (*Spool, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open spool: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ai_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			user_hash TEXT NOT NULL,
			session_id TEXT NOT NULL,
			provider TEXT,
			assistant_id TEXT,
			message_count INTEGER NOT NULL DEFAULT 0,
			prompt_tokens INTEGER,
			completion_tokens INTEGER,
			total_tokens INTEGER,
			model TEXT,
			conversation_context TEXT,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create spool schema: %w", err)
	}

	return &Spool{db: db, logger: logger}, nil
}

// InsertAISession appends one conversation record to the spool.
func (s *Spool) InsertAISession(ctx context.Context, c model.Conversation) error {
	var userID *string
	if c.UserID != nil {
		v := c.UserID.String()
		userID = &v
	}

	var contextJSON *string
	if c.ConversationContext != nil {
		b, err := json.Marshal(c.ConversationContext)
		if err != nil {
			return fmt.Errorf("storage: marshal conversation context: %w", err)
		}
		v := string(b)
		contextJSON = &v
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_sessions (
		     user_id, user_hash, session_id, provider, assistant_id,
		     message_count, prompt_tokens, completion_tokens, total_tokens,
		     model, conversation_context, created_at
		 )
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, c.UserHash, c.SessionID, c.Provider, c.AssistantID,
		c.MessageCount, c.PromptTokens, c.CompletionTokens, c.TotalTokens,
		c.Model, contextJSON, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storage: spool insert: %w", err)
	}
	return nil
}

// Len returns the number of spooled records.
func (s *Spool) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM ai_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: spool count: %w", err)
	}
	return n, nil
}

// Close closes the spool file.
func (s *Spool) Close() error {
	return s.db.Close()
}
