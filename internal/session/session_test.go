package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"wallet/internal/api"
	"wallet/internal/storage"
)

type mapKV map[string]string

func (m mapKV) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m mapKV) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m mapKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type brokenKV struct{ mapKV }

func (brokenKV) Get(context.Context, string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestLoggedInFlag(t *testing.T) {
	kv := mapKV{}
	s := New(kv)
	ctx := context.Background()

	if s.LoggedIn(ctx) {
		t.Fatal("fresh session should be logged out")
	}
	if err := s.LogIn(ctx); err != nil {
		t.Fatalf("LogIn: %v", err)
	}
	if kv[KeyAuth] != `{"logged":true}` {
		t.Fatalf("unexpected stored value %q", kv[KeyAuth])
	}
	if !s.LoggedIn(ctx) {
		t.Fatal("expected logged in")
	}
	if err := s.LogOut(ctx); err != nil {
		t.Fatalf("LogOut: %v", err)
	}
	if s.LoggedIn(ctx) {
		t.Fatal("expected logged out")
	}
}

func TestLoggedInTreatsGarbageAsLoggedOut(t *testing.T) {
	s := New(mapKV{KeyAuth: "yes please"})
	if s.LoggedIn(context.Background()) {
		t.Fatal("corrupt value must read as logged out")
	}
	if New(brokenKV{}).LoggedIn(context.Background()) {
		t.Fatal("read error must read as logged out")
	}
}

func TestBaseURL(t *testing.T) {
	kv := mapKV{}
	s := New(kv)
	ctx := context.Background()

	if _, err := s.BaseURL(ctx); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
	if err := s.SetBaseURL(ctx, " http://localhost:3000/ "); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	got, err := s.BaseURL(ctx)
	if err != nil || got != "http://localhost:3000" {
		t.Fatalf("BaseURL = %q, %v", got, err)
	}

	if err := s.SeedBaseURL(ctx, "http://other:1"); err != nil {
		t.Fatalf("SeedBaseURL: %v", err)
	}
	if got, _ := s.BaseURL(ctx); got != "http://localhost:3000" {
		t.Fatalf("seed must not overwrite, got %q", got)
	}

	if err := s.SetBaseURL(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.BaseURL(ctx); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL after clear, got %v", err)
	}
	if err := s.SeedBaseURL(ctx, "http://seeded:2"); err != nil {
		t.Fatalf("SeedBaseURL: %v", err)
	}
	if got, _ := s.BaseURL(ctx); got != "http://seeded:2" {
		t.Fatalf("seed on empty = %q", got)
	}
}

func TestSetBaseURLRejectsRelativeURL(t *testing.T) {
	kv := mapKV{}
	s := New(kv)
	ctx := context.Background()

	if err := s.SetBaseURL(ctx, "http://localhost:3000"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	for _, bad := range []string{"localhost:8080", "ftp://files.example.com", "http://"} {
		if err := s.SetBaseURL(ctx, bad); !errors.Is(err, api.ErrInvalidBaseURL) {
			t.Errorf("SetBaseURL(%q) = %v, want ErrInvalidBaseURL", bad, err)
		}
	}
	if got, _ := s.BaseURL(ctx); got != "http://localhost:3000" {
		t.Fatalf("rejected URL must not replace the stored one, got %q", got)
	}
}

func TestSessionOverSQLite(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	s := New(repo)
	if err := s.LogIn(ctx); err != nil {
		t.Fatalf("LogIn: %v", err)
	}
	if err := s.SetBaseURL(ctx, "http://10.0.2.2:3000"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}

	again := New(repo)
	if !again.LoggedIn(ctx) {
		t.Fatal("state not persisted")
	}
	if got, err := again.BaseURL(ctx); err != nil || got != "http://10.0.2.2:3000" {
		t.Fatalf("BaseURL = %q, %v", got, err)
	}
}
