package supabase

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMissingConfig indicates a required Supabase setting is absent.
var ErrMissingConfig = errors.New("supabase: missing configuration")

// Factory builds clients for one Supabase project. The admin client is
// constructed lazily on first use and memoized for the process lifetime;
// public clients are fresh per call. Lazy construction matters: the factory
// can be created before credentials are known to be present, and the
// configuration error surfaces only when a caller actually needs the client.
type Factory struct {
	url        string
	anonKey    string
	serviceKey string

	adminOnce sync.Once
	admin     *Client
	adminErr  error
}

// NewFactory creates a factory from raw configuration values. No validation
// happens here; each accessor reports what it is missing.
func NewFactory(url, anonKey, serviceKey string) *Factory {
	return &Factory{url: url, anonKey: anonKey, serviceKey: serviceKey}
}

// Admin returns the memoized service-role client. The first call performs
// one-time construction; every call (including the first) returns the same
// instance or the same configuration error.
func (f *Factory) Admin() (*Client, error) {
	f.adminOnce.Do(func() {
		if f.url == "" {
			f.adminErr = fmt.Errorf("SUPABASE_URL is required for the admin client: %w", ErrMissingConfig)
			return
		}
		if f.serviceKey == "" {
			f.adminErr = fmt.Errorf("SUPABASE_SERVICE_KEY is required for the admin client: %w", ErrMissingConfig)
			return
		}
		f.admin = newClient(f.url, f.serviceKey)
	})
	return f.admin, f.adminErr
}

// Public returns a fresh anon-key client. Unlike Admin, nothing is cached:
// each caller gets its own handle.
func (f *Factory) Public() (*Client, error) {
	if f.url == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required for the public client: %w", ErrMissingConfig)
	}
	if f.anonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required for the public client: %w", ErrMissingConfig)
	}
	return newClient(f.url, f.anonKey), nil
}
