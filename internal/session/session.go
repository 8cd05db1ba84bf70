// Package session persists the logged-in user between client runs and is
// the single place that decides whether a saved login is still valid.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/pkg/storage"
)

const (
	// Key is the storage key of the saved session.
	Key = "user"

	DefaultTTL = 24 * time.Hour
)

var (
	ErrNoSession       = errors.New("not logged in")
	ErrExpired         = errors.New("session expired, please log in again")
	ErrMissingIdentity = errors.New("session has no username")
)

// Session is the authenticated user as remembered by the client.
type Session struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"name"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	LoginTime   time.Time `json:"loginTime"`
	AccessToken string    `json:"token,omitempty"`
}

func (s Session) IsAdmin() bool {
	return s.Role == "admin"
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store reads and writes the session under Key.
type Store struct {
	storage storage.Storage
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// Load returns the saved session. Undecodable, anonymous or expired records
// are deleted before an error is returned.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	rc, err := s.storage.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("discarding corrupt session", "error", err)
		s.discard(ctx)
		return nil, ErrNoSession
	}

	if sess.Username == "" {
		s.discard(ctx)
		return nil, ErrMissingIdentity
	}

	now := s.now()
	if sess.LoginTime.After(now) {
		s.logger.Warn("discarding session from the future", "username", sess.Username, "login_time", sess.LoginTime)
		s.discard(ctx)
		return nil, ErrExpired
	}
	if now.Sub(sess.LoginTime) > s.ttl {
		s.logger.Info("session expired", "username", sess.Username, "login_time", sess.LoginTime)
		s.discard(ctx)
		return nil, ErrExpired
	}

	return &sess, nil
}

// Save persists sess. A session must carry a username.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Username == "" {
		return ErrMissingIdentity
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Save(ctx, Key, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the saved session. Clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, Key); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserID returns the username of the valid session.
func (s *Store) UserID(ctx context.Context) (string, error) {
	sess, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return sess.Username, nil
}

// AccessToken returns the bearer token of the valid session, or "".
func (s *Store) AccessToken(ctx context.Context) string {
	sess, err := s.Load(ctx)
	if err != nil {
		return ""
	}
	return sess.AccessToken
}

func (s *Store) discard(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warn("failed to delete stale session", "error", err)
	}
}
