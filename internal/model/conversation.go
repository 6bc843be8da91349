package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one append-only AI usage record destined for the
// ai_sessions analytics table. UserHash and SessionID are required; every
// other field is optional and nullable in the schema.
type Conversation struct {
	UserID              *uuid.UUID     `json:"user_id,omitempty"`
	UserHash            string         `json:"user_hash"`
	SessionID           string         `json:"session_id"`
	Provider            string         `json:"provider,omitempty"`
	AssistantID         *string        `json:"assistant_id,omitempty"`
	MessageCount        int            `json:"message_count"`
	PromptTokens        *int           `json:"prompt_tokens,omitempty"`
	CompletionTokens    *int           `json:"completion_tokens,omitempty"`
	TotalTokens         *int           `json:"total_tokens,omitempty"`
	Model               *string        `json:"model,omitempty"`
	ConversationContext map[string]any `json:"conversation_context,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}
