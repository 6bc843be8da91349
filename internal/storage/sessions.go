package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creastudio/studiogate/internal/model"
)

// InsertAISession appends one AI conversation record to the ai_sessions
// analytics table. The table is append-only; nothing in the gateway updates
// or deletes rows.
func (db *DB) InsertAISession(ctx context.Context, c model.Conversation) error {
	var contextJSON []byte
	if c.ConversationContext != nil {
		var err error
		contextJSON, err = json.Marshal(c.ConversationContext)
		if err != nil {
			return fmt.Errorf("storage: marshal conversation context: %w", err)
		}
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO ai_sessions (
		     user_id, user_hash, session_id, provider, assistant_id,
		     message_count, prompt_tokens, completion_tokens, total_tokens,
		     model, conversation_context, created_at
		 )
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)`,
		c.UserID, c.UserHash, c.SessionID, c.Provider, c.AssistantID,
		c.MessageCount, c.PromptTokens, c.CompletionTokens, c.TotalTokens,
		c.Model, contextJSON, createdAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert ai session: %w", err)
	}
	return nil
}

// CountAISessions returns the number of logged conversations for a user hash.
// Used by the internal stats endpoint and integration tests.
func (db *DB) CountAISessions(ctx context.Context, userHash string) (int64, error) {
	var n int64
	err := db.pool.QueryRow(ctx,
		`SELECT count(*) FROM ai_sessions WHERE user_hash = $1`,
		userHash,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: count ai sessions: %w", err)
	}
	return n, nil
}
