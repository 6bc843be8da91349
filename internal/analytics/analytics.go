// Package analytics records AI conversation usage for later analysis.
//
// Writes are best-effort telemetry: a failed insert is logged and dropped,
// never surfaced to the caller and never retried. The caller's primary
// operation must not be able to fail because of analytics.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/creastudio/studiogate/internal/model"
)

// userHashLen is the number of hex characters kept from the digest.
const userHashLen = 16

// GenerateUserHash derives a privacy-preserving identifier from a raw one
// (an IP address or account id). The output is a fixed-length one-way digest;
// the raw identifier is never stored.
func GenerateUserHash(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])[:userHashLen]
}

const sessionIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSessionID mints an identifier for one multi-turn exchange: a
// millisecond timestamp plus a random suffix. No registry lookup is needed;
// the random component makes same-millisecond collisions negligible.
func GenerateSessionID() string {
	suffix := make([]byte, 13)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("analytics: read random bytes: %v", err))
	}
	for i, b := range suffix {
		suffix[i] = sessionIDAlphabet[int(b)%len(sessionIDAlphabet)]
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

// Store is anything that can persist one conversation record.
// *storage.DB (direct Postgres), *supabase.Client via RESTStore, and
// *storage.Spool (local SQLite) all qualify.
type Store interface {
	InsertAISession(ctx context.Context, c model.Conversation) error
}

// Logger writes conversation records through a primary store, falling back
// to an optional secondary (typically the local spool) when the primary
// write fails.
type Logger struct {
	store    Store
	fallback Store
	logger   *slog.Logger
}

// NewLogger creates a conversation logger. fallback may be nil.
func NewLogger(store Store, fallback Store, logger *slog.Logger) *Logger {
	return &Logger{store: store, fallback: fallback, logger: logger}
}

// LogConversation persists one conversation record. It has no error return:
// any failure is logged for operator visibility and otherwise absorbed.
func (l *Logger) LogConversation(ctx context.Context, c model.Conversation) {
	if c.UserHash == "" || c.SessionID == "" {
		l.logger.Warn("analytics: dropping record without user_hash or session_id",
			"provider", c.Provider)
		return
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	if l.store != nil {
		err := l.store.InsertAISession(ctx, c)
		if err == nil {
			return
		}
		l.logger.Error("analytics: log conversation failed",
			"error", err,
			"session_id", c.SessionID,
			"provider", c.Provider)
	}

	if l.fallback != nil {
		if err := l.fallback.InsertAISession(ctx, c); err != nil {
			l.logger.Error("analytics: spool fallback failed",
				"error", err,
				"session_id", c.SessionID)
		}
	}
}
