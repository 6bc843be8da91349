package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creastudio/studiogate/internal/model"
)

func TestUserResolvesSession(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		require.Equal(t, "anon-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + userID.String() + `","email":"pat@example.com"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "anon-key")
	sess, err := c.User(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "pat@example.com", sess.Email)
}

func TestUserInvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "anon-key")
	_, err := c.User(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserRole(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/user_roles", r.URL.Path)
		require.Equal(t, "eq."+userID.String(), r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"role":"manager"}]`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "service-key")
	role, err := c.UserRole(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, role)
}

func TestUserRoleAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "service-key")
	_, err := c.UserRole(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRoleServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "service-key")
	_, err := c.UserRole(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound), "a lookup failure must not read as absence")
}

func TestInsert(t *testing.T) {
	var gotPrefer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/ai_sessions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotPrefer = r.Header.Get("Prefer")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "service-key")
	err := c.Insert(context.Background(), "ai_sessions", map[string]any{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "return=minimal", gotPrefer)
}

func TestInsertFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "service-key")
	err := c.Insert(context.Background(), "ai_sessions", map[string]any{"session_id": "s1"})
	assert.Error(t, err)
}
