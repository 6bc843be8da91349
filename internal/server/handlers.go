package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/creastudio/studiogate/internal/analytics"
	"github.com/creastudio/studiogate/internal/auth"
	"github.com/creastudio/studiogate/internal/model"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleHealth reports liveness and, when a direct database pool is
// configured, storage connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health: database ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"version": s.version,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// logConversationRequest is the ingestion payload application routes POST
// after an AI exchange. Everything except message_count is optional: missing
// identifiers are derived server-side from the gated session.
type logConversationRequest struct {
	UserHash            string         `json:"user_hash,omitempty"`
	SessionID           string         `json:"session_id,omitempty"`
	Provider            string         `json:"provider,omitempty"`
	AssistantID         *string        `json:"assistant_id,omitempty"`
	MessageCount        int            `json:"message_count"`
	PromptTokens        *int           `json:"prompt_tokens,omitempty"`
	CompletionTokens    *int           `json:"completion_tokens,omitempty"`
	TotalTokens         *int           `json:"total_tokens,omitempty"`
	Model               *string        `json:"model,omitempty"`
	ConversationContext map[string]any `json:"conversation_context,omitempty"`
}

// handleLogConversation records one AI conversation. The write is
// best-effort: a storage failure never turns into a client-facing error,
// so the only non-2xx outcome is a malformed request body.
func (s *Server) handleLogConversation(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		// The gate always runs before this handler; a missing session means
		// a wiring bug, not a client error.
		s.logger.Error("ai-sessions: no session in context")
		writeJSON(w, http.StatusInternalServerError, model.ErrorBody{
			Error:   model.ErrorInternal,
			Message: "session not resolved",
		})
		return
	}

	var req logConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorBody{
			Error:   model.ErrorBadRequest,
			Message: "invalid JSON body",
		})
		return
	}

	userHash := req.UserHash
	if userHash == "" {
		userHash = analytics.GenerateUserHash(sess.UserID.String())
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = analytics.GenerateSessionID()
	}

	userID := sess.UserID
	s.analytics.LogConversation(r.Context(), model.Conversation{
		UserID:              &userID,
		UserHash:            userHash,
		SessionID:           sessionID,
		Provider:            req.Provider,
		AssistantID:         req.AssistantID,
		MessageCount:        req.MessageCount,
		PromptTokens:        req.PromptTokens,
		CompletionTokens:    req.CompletionTokens,
		TotalTokens:         req.TotalTokens,
		Model:               req.Model,
		ConversationContext: req.ConversationContext,
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"session_id": sessionID,
		"user_hash":  userHash,
	})
}

// handleInternalStats exposes gate decision counters to operators. Protected
// by the internal API key; responds 404 when the key is not configured so the
// endpoint's existence is not advertised.
func (s *Server) handleInternalStats(w http.ResponseWriter, r *http.Request) {
	if s.internalKeyHash == "" {
		auth.DummyVerify()
		http.NotFound(w, r)
		return
	}

	key := r.Header.Get("X-Internal-Api-Key")
	if key == "" {
		auth.DummyVerify()
		writeJSON(w, http.StatusUnauthorized, model.ErrorBody{
			Error:   model.ErrorUnauthorized,
			Message: "internal API key required",
		})
		return
	}

	ok, err := auth.VerifyInternalKey(key, s.internalKeyHash)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, model.ErrorBody{
			Error:   model.ErrorUnauthorized,
			Message: "internal API key invalid",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"allowed":           s.stats.allowed.Load(),
		"denied_no_session": s.stats.deniedNoSession.Load(),
		"denied_role":       s.stats.deniedRole.Load(),
		"bypassed":          s.stats.bypassed.Load(),
	})
}
