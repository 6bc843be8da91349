package supabase

import (
	"errors"
	"testing"
)

func TestAdminMemoized(t *testing.T) {
	f := NewFactory("https://proj.supabase.co", "anon", "service")

	a1, err := f.Admin()
	if err != nil {
		t.Fatalf("Admin() error: %v", err)
	}
	a2, err := f.Admin()
	if err != nil {
		t.Fatalf("Admin() second call error: %v", err)
	}
	if a1 != a2 {
		t.Error("Admin() should return the same instance on every call")
	}
}

func TestAdminMissingConfig(t *testing.T) {
	tests := []struct {
		name             string
		url, anon, svc   string
	}{
		{"no url", "", "anon", "service"},
		{"no service key", "https://proj.supabase.co", "anon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory(tt.url, tt.anon, tt.svc)
			if _, err := f.Admin(); !errors.Is(err, ErrMissingConfig) {
				t.Errorf("Admin() error = %v, want ErrMissingConfig", err)
			}
			// The error is memoized too: a later call must not succeed.
			if _, err := f.Admin(); !errors.Is(err, ErrMissingConfig) {
				t.Errorf("Admin() repeat error = %v, want ErrMissingConfig", err)
			}
		})
	}
}

func TestPublicFreshPerCall(t *testing.T) {
	f := NewFactory("https://proj.supabase.co", "anon", "")

	p1, err := f.Public()
	if err != nil {
		t.Fatalf("Public() error: %v", err)
	}
	p2, err := f.Public()
	if err != nil {
		t.Fatalf("Public() second call error: %v", err)
	}
	if p1 == p2 {
		t.Error("Public() should return a fresh client per call")
	}
}

func TestPublicMissingConfig(t *testing.T) {
	f := NewFactory("https://proj.supabase.co", "", "service")
	if _, err := f.Public(); !errors.Is(err, ErrMissingConfig) {
		t.Errorf("Public() error = %v, want ErrMissingConfig", err)
	}
}
