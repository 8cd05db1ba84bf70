package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/auth"
)

// Service defines business logic related to users.
type Service interface {
	Login(ctx context.Context, username, password string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// SeedDemoUsers creates the demo accounts that do not exist yet and
	// returns how many were created.
	SeedDemoUsers(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		hasher: hasher,
		logger: logger.With("service", "user"),
		now:    time.Now,
	}
}

func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	name := strings.TrimSpace(username)
	if name == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Login succeeds even when the timestamp update fails.
	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.Username, now); err != nil {
		s.logger.WarnContext(ctx, "update last login failed", "username", u.Username, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *service) SeedDemoUsers(ctx context.Context) (int, error) {
	created := 0
	for _, seed := range DemoUsers {
		hash, err := s.hasher.Hash(seed.Password)
		if err != nil {
			return created, fmt.Errorf("failed to hash password for %s: %w", seed.Username, err)
		}

		err = s.repo.Create(ctx, &User{
			Username:     seed.Username,
			PasswordHash: hash,
			DisplayName:  seed.DisplayName,
			Role:         seed.Role,
			Email:        seed.Email,
		})
		if errors.Is(err, ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.logger.InfoContext(ctx, "seeded demo users", "count", created)
	}
	return created, nil
}
