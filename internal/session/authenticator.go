package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/workplace-booking/internal/gateway"
)

var (
	ErrEmptyCredentials   = errors.New("please enter username and password")
	ErrBackendUnavailable = errors.New("backend not responding, please try again later")
)

// LoginGateway is the part of the backend contract needed to log in.
type LoginGateway interface {
	HealthCheck(ctx context.Context) bool
	Login(ctx context.Context, username, password string) (*gateway.LoginResult, error)
}

// Authenticator logs users in and out and keeps the Store in sync.
type Authenticator struct {
	gw     LoginGateway
	store  *Store
	logger *slog.Logger
}

func NewAuthenticator(gw LoginGateway, store *Store, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		gw:     gw,
		store:  store,
		logger: logger.With("component", "auth"),
	}
}

// Login checks the backend is reachable, authenticates and saves the session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	if !a.gw.HealthCheck(ctx) {
		return nil, ErrBackendUnavailable
	}

	res, err := a.gw.Login(ctx, username, password)
	if err != nil {
		a.logger.Warn("login failed", "username", username, "error", err)
		return nil, err
	}
	if res.Username == "" {
		return nil, ErrMissingIdentity
	}

	sess := &Session{
		Username:    res.Username,
		DisplayName: res.Name,
		Role:        res.Role,
		Email:       res.Email,
		LoginTime:   a.store.now(),
		AccessToken: res.Token,
	}
	if err := a.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	a.logger.Info("logged in", "username", sess.Username, "role", sess.Role)
	return sess, nil
}

// Logout forgets the saved session.
func (a *Authenticator) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

// Current returns the valid saved session, if any.
func (a *Authenticator) Current(ctx context.Context) (*Session, error) {
	return a.store.Load(ctx)
}
