// Package supabase provides a minimal REST client for the two Supabase
// surfaces studiogate touches: GoTrue (session identity) and PostgREST
// (role rows and analytics inserts). It is not a general SDK — only the
// operations the gateway needs are implemented.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/creastudio/studiogate/internal/model"
)

// ErrNotFound is returned when a PostgREST lookup matches no rows.
var ErrNotFound = errors.New("supabase: not found")

// ErrInvalidToken is returned when GoTrue rejects an access token.
var ErrInvalidToken = errors.New("supabase: invalid or expired token")

// Client talks to one Supabase project with one API key. The key doubles as
// the PostgREST role: the anon key yields an unauthenticated client, the
// service-role key an elevated one.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// gotrueUser is the subset of the GoTrue user payload the gateway reads.
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// User resolves a user access token into a session identity via GoTrue.
func (c *Client) User(ctx context.Context, accessToken string) (model.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("supabase: create user request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("supabase: user lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.Session{}, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.Session{}, fmt.Errorf("supabase: user lookup status %d: %s", resp.StatusCode, string(body))
	}

	var u gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return model.Session{}, fmt.Errorf("supabase: decode user: %w", err)
	}

	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("supabase: user id is not a UUID: %w", err)
	}

	return model.Session{UserID: userID, Email: u.Email}, nil
}

// UserRole fetches the caller's role row from the user_roles table.
// Returns ErrNotFound when the user has no row.
func (c *Client) UserRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	q := url.Values{}
	q.Set("select", "role")
	q.Set("user_id", "eq."+userID.String())
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/rest/v1/user_roles?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("supabase: create role request: %w", err)
	}
	c.setHeaders(req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase: role lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("supabase: role lookup status %d: %s", resp.StatusCode, string(body))
	}

	var rows []struct {
		Role model.Role `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", fmt.Errorf("supabase: decode role rows: %w", err)
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rows[0].Role, nil
}

// Insert appends one row to a table via PostgREST.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("supabase: marshal %s row: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v1/"+url.PathEscape(table), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: create insert request: %w", err)
	}
	c.setHeaders(req, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: insert into %s: %w", table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("supabase: insert into %s status %d: %s", table, resp.StatusCode, string(body))
	}
	return nil
}

// setHeaders applies the standard Supabase header pair: the project API key
// plus a bearer token (a user access token for GoTrue calls, the client's
// own key otherwise).
func (c *Client) setHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
}
