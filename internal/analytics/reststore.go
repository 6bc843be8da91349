package analytics

import (
	"context"
	"time"

	"github.com/creastudio/studiogate/internal/model"
	"github.com/creastudio/studiogate/internal/supabase"
)

// RESTStore persists conversation records through the Supabase REST API.
// Used when no direct Postgres DSN is configured.
type RESTStore struct {
	Client *supabase.Client
}

// InsertAISession appends one row to ai_sessions via PostgREST.
func (s *RESTStore) InsertAISession(ctx context.Context, c model.Conversation) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := map[string]any{
		"user_id":              c.UserID,
		"user_hash":            c.UserHash,
		"session_id":           c.SessionID,
		"provider":             orNil(c.Provider),
		"assistant_id":         c.AssistantID,
		"message_count":        c.MessageCount,
		"prompt_tokens":        c.PromptTokens,
		"completion_tokens":    c.CompletionTokens,
		"total_tokens":         c.TotalTokens,
		"model":                c.Model,
		"conversation_context": c.ConversationContext,
		"created_at":           createdAt.Format(time.RFC3339Nano),
	}
	return s.Client.Insert(ctx, "ai_sessions", row)
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
