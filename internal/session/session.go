// Package session keeps the client's local state: whether the user is
// logged in and which API base URL to talk to.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"wallet/internal/api"
	"wallet/internal/log"
	"wallet/internal/storage"
)

const (
	KeyAuth    = "auth"
	KeyBaseURL = "baseURL"
)

// ErrNoBaseURL is returned when no API base URL has been configured.
var ErrNoBaseURL = errors.New("no API base URL configured")

// KV is the key/value store the session persists to. Get returns
// storage.ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type authState struct {
	Logged bool `json:"logged"`
}

type Session struct {
	kv     KV
	logger *log.Logger
}

func New(kv KV) *Session {
	return &Session{kv: kv, logger: log.Default(log.ComponentSession)}
}

// LoggedIn reports the stored flag. A missing or unreadable value means logged out.
func (s *Session) LoggedIn(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, KeyAuth)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to read auth state", log.FieldError, err)
		}
		return false
	}
	var st authState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.WarnContext(ctx, "Corrupt auth state", log.FieldError, err)
		return false
	}
	return st.Logged
}

func (s *Session) LogIn(ctx context.Context) error {
	return s.setAuth(ctx, true)
}

func (s *Session) LogOut(ctx context.Context) error {
	return s.setAuth(ctx, false)
}

func (s *Session) setAuth(ctx context.Context, logged bool) error {
	b, err := json.Marshal(authState{Logged: logged})
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}
	if err := s.kv.Set(ctx, KeyAuth, string(b)); err != nil {
		return fmt.Errorf("store auth state: %w", err)
	}
	s.logger.InfoContext(ctx, "Auth state changed", "logged", logged)
	return nil
}

// BaseURL returns the configured API base URL without a trailing slash.
func (s *Session) BaseURL(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, KeyBaseURL)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNoBaseURL
	}
	if err != nil {
		return "", fmt.Errorf("read base URL: %w", err)
	}
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", ErrNoBaseURL
	}
	return raw, nil
}

// SetBaseURL stores url, which must be an absolute http(s) URL. An empty url
// clears it.
func (s *Session) SetBaseURL(ctx context.Context, url string) error {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		if err := s.kv.Delete(ctx, KeyBaseURL); err != nil {
			return fmt.Errorf("clear base URL: %w", err)
		}
		return nil
	}
	if err := api.ValidateBaseURL(url); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyBaseURL, url); err != nil {
		return fmt.Errorf("store base URL: %w", err)
	}
	return nil
}

// SeedBaseURL stores url only when no base URL is configured yet.
func (s *Session) SeedBaseURL(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if _, err := s.BaseURL(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrNoBaseURL) {
		return err
	}
	return s.SetBaseURL(ctx, url)
}
