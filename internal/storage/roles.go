package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/creastudio/studiogate/internal/model"
)

// UserRole returns the role assigned to a user, or ErrNotFound if the user
// has no row in user_roles. Role rows are written by external administration;
// the gateway only reads them.
func (db *DB) UserRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	var role model.Role
	err := db.pool.QueryRow(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1`,
		userID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: get user role: %w", err)
	}
	return role, nil
}
