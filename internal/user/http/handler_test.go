package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/workplace-booking/internal/auth"
	"github.com/nekogravitycat/workplace-booking/internal/user"
)

type stubUsers struct{}

func (stubUsers) Login(ctx context.Context, username, password string) (*user.User, error) {
	if username == "user" && password == "user123" {
		return &user.User{Username: "user", DisplayName: "Ivan Petrov", Role: user.RoleEmployee, Email: "ivan.petrov@company.com"}, nil
	}
	return nil, user.ErrInvalidCredentials
}

func (stubUsers) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if username == "user" {
		return &user.User{Username: "user", DisplayName: "Ivan Petrov", Role: user.RoleEmployee}, nil
	}
	return nil, user.ErrNotFound
}

func (stubUsers) SeedDemoUsers(ctx context.Context) (int, error) { return 0, nil }

func setup() (*gin.Engine, *auth.JWTManager) {
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewUserHandler(stubUsers{}, jwt), auth.AuthRequired(jwt))
	return r, jwt
}

func TestLogin(t *testing.T) {
	r, jwt := setup()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"user","password":"user123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ivan Petrov", resp.Name)
	assert.Equal(t, "employee", resp.Role)

	claims, err := jwt.ParseAndValidate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Subject)
}

func TestLogin_Failures(t *testing.T) {
	r, _ := setup()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"username":"user","password":"nope"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"user"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)

			var resp LoginResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMe(t *testing.T) {
	r, jwt := setup()
	token, err := jwt.GenerateAccessToken("user", "employee")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.Username)
	assert.Equal(t, "Ivan Petrov", resp.Name)
}
