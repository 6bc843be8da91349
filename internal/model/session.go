package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is the identity resolved from a Supabase access token.
// Sessions are created and destroyed entirely by the external auth service;
// studiogate only reads them.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
