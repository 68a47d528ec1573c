package core

import (
	"context"
	"time"
)

// Role is a user's access level.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User represents an authenticated system user.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// UserInput holds the fields required to create a user. PasswordHash must already be hashed.
type UserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

// UserService provides user lookup and provisioning.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID string) (*User, error)

	// CreateUser inserts a new active user.
	CreateUser(ctx context.Context, input UserInput) (*User, error)
}
