package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/workplace-booking/internal/auth"
)

type memRepo struct {
	users      map[string]*User
	loginErr   error
	lastLogins map[string]time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}, lastLogins: map[string]time.Time{}}
}

func (r *memRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *memRepo) UpdateLastLogin(ctx context.Context, username string, t time.Time) error {
	if r.loginErr != nil {
		return r.loginErr
	}
	r.lastLogins[username] = t
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSeedDemoUsers_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	n, err := svc.SeedDemoUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.SeedDemoUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, RoleAdmin, repo.users["admin"].Role)
	assert.Equal(t, "Ivan Petrov", repo.users["user"].DisplayName)
	assert.NotEqual(t, "123456", repo.users["employee1"].PasswordHash)
}

func TestLogin(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.SeedDemoUsers(ctx)
	require.NoError(t, err)

	u, err := svc.Login(ctx, " user ", "user123")
	require.NoError(t, err)
	assert.Equal(t, "user", u.Username)
	assert.Equal(t, RoleEmployee, u.Role)
	require.NotNil(t, u.LastLoginAt)
	assert.Contains(t, repo.lastLogins, "user")

	_, err = svc.Login(ctx, "user", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost", "user123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LastLoginFailureIgnored(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.SeedDemoUsers(ctx)
	require.NoError(t, err)

	repo.loginErr = errors.New("db down")
	u, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleEmployee, ParseRole("user"))
	assert.Equal(t, RoleEmployee, ParseRole("employee"))
}
