// Package auth resolves Supabase sessions from incoming requests.
//
// Supabase access tokens are HS256 JWTs signed with the project JWT secret.
// When the secret is configured the gateway verifies tokens locally; otherwise
// it falls back to a GoTrue round trip through the admin client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/creastudio/studiogate/internal/model"
	"github.com/creastudio/studiogate/internal/supabase"
)

// AccessTokenCookie is the cookie name Supabase client libraries use for the
// access token.
const AccessTokenCookie = "sb-access-token"

// ErrNoToken is returned when a request carries no access token at all.
var ErrNoToken = errors.New("auth: no access token")

// Verifier resolves an access token into a session identity.
// Any error means "no valid session" to the request gate.
type Verifier interface {
	Verify(ctx context.Context, token string) (model.Session, error)
}

// ExtractToken pulls the Supabase access token from a request, preferring the
// Authorization header over the auth cookie.
func ExtractToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		return "", fmt.Errorf("auth: malformed authorization header")
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrNoToken
}

// Claims is the subset of Supabase access token claims the gateway reads.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTVerifier validates access tokens locally against the project JWT secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for HS256 Supabase access tokens.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: SUPABASE_JWT_SECRET is required for local verification")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates an access token, returning the session identity.
func (v *JWTVerifier) Verify(_ context.Context, tokenStr string) (model.Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithAudience("authenticated"),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: validate token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Session{}, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: invalid subject (expected UUID): %w", err)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return model.Session{UserID: userID, Email: claims.Email, ExpiresAt: expiresAt}, nil
}

// RemoteVerifier resolves tokens with a GoTrue user lookup. Used when no JWT
// secret is configured; every gated request costs one auth service call.
// The lookup needs only the anon key — the user's own bearer token carries
// the authority — so each call gets a fresh public client.
type RemoteVerifier struct {
	factory *supabase.Factory
}

// NewRemoteVerifier creates a verifier backed by the client factory.
func NewRemoteVerifier(factory *supabase.Factory) *RemoteVerifier {
	return &RemoteVerifier{factory: factory}
}

// Verify resolves the token via the auth service.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (model.Session, error) {
	client, err := v.factory.Public()
	if err != nil {
		return model.Session{}, fmt.Errorf("auth: public client unavailable: %w", err)
	}
	return client.User(ctx, token)
}
