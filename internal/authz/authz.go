// Package authz resolves user roles for the request gate.
//
// The role table lives in the Supabase project's Postgres database; the
// source is either a direct pgx lookup or a PostgREST query depending on
// deployment. Either way the gate's contract is the same: absence of a row
// and a failed lookup both resolve to the least-privileged role.
package authz

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/creastudio/studiogate/internal/model"
	"github.com/creastudio/studiogate/internal/storage"
	"github.com/creastudio/studiogate/internal/supabase"
)

// RoleSource is anything that can fetch a user's role row.
// *storage.DB and *supabase.Client both satisfy it.
type RoleSource interface {
	UserRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
}

// Resolver resolves roles with optional short-TTL caching. Concurrent
// lookups for the same user are collapsed via singleflight so a burst of
// gated requests costs one query.
type Resolver struct {
	source RoleSource
	cache  *roleCache // nil when caching is disabled
	group  singleflight.Group
	logger *slog.Logger
}

// NewResolver creates a resolver. ttl == 0 disables caching: every request
// performs its own lookup, matching the one-lookup-per-request contract.
func NewResolver(source RoleSource, ttl time.Duration, logger *slog.Logger) *Resolver {
	r := &Resolver{source: source, logger: logger}
	if ttl > 0 {
		r.cache = newRoleCache(ttl)
	}
	return r
}

// Close releases the cache's background goroutine, if any.
func (r *Resolver) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

// Resolve returns the user's role. It never fails: a missing row resolves to
// the default role, and so does a lookup error. The two cases are logged at
// different levels but are indistinguishable to the caller — a user whose
// role cannot be read is treated exactly like a user who has none.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) model.Role {
	key := userID.String()

	if r.cache != nil {
		if role, ok := r.cache.Get(key); ok {
			return role
		}
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		role, err := r.source.UserRole(ctx, userID)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound) || errors.Is(err, supabase.ErrNotFound):
			r.logger.Debug("authz: no role row, using default", "user_id", key)
			role = model.DefaultRole
		default:
			r.logger.Warn("authz: role lookup failed, using default",
				"error", err, "user_id", key)
			// Lookup failures are not cached; the next request retries.
			return model.DefaultRole, nil
		}

		if r.cache != nil {
			r.cache.Set(key, role)
		}
		return role, nil
	})

	return v.(model.Role)
}
