package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = true
		LIMIT 1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("user", username)
		}
		return nil, fmt.Errorf("user %q lookup failed: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewNotFoundError("user", userID)
		}
		return nil, fmt.Errorf("user id=%s lookup failed: %w", userID, err)
	}
	return u, nil
}

func (s *userService) CreateUser(ctx context.Context, input UserInput) (*User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, NewValidationError("username", "is required")
	}
	if input.PasswordHash == "" {
		return nil, NewValidationError("password", "is required")
	}
	if !input.Role.Valid() {
		return nil, NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}

	u := &User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, role, is_active, created_at`,
		uuid.NewString(), input.Username, input.Email, input.PasswordHash, input.Role,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewValidationError("username", fmt.Sprintf("%q is already taken", input.Username))
		}
		return nil, fmt.Errorf("create user %q: %w", input.Username, err)
	}
	return u, nil
}
