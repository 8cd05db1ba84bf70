package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrAlreadyExists      = apperror.New(http.StatusConflict, "user already exists")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid username or password")
)

// Role is the permission level of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole maps stored role names onto Role. The legacy name "user" is an employee.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleEmployee
}

// User is an account that can log in and own bookings.
type User struct {
	Username     string
	PasswordHash string
	DisplayName  string
	Role         Role
	Email        string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Seed is a demo account created on first start.
type Seed struct {
	Username    string
	Password    string
	DisplayName string
	Role        Role
	Email       string
}

// DemoUsers are the accounts available on a fresh installation.
var DemoUsers = []Seed{
	{Username: "admin", Password: "admin123", DisplayName: "System Administrator", Role: RoleAdmin, Email: "admin@company.com"},
	{Username: "user", Password: "user123", DisplayName: "Ivan Petrov", Role: RoleEmployee, Email: "ivan.petrov@company.com"},
	{Username: "employee1", Password: "123456", DisplayName: "Maria Sidorova", Role: RoleEmployee, Email: "maria.sidorova@company.com"},
}
