package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-login-portal/internal/domain/entity"
)

var (
	// ErrNotFound means no row matched; callers must not confuse it with a
	// backend failure.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is raised by the storage uniqueness constraint,
	// the authoritative guard against a check-then-insert race.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUnavailable covers connectivity and query failures.
	ErrUnavailable = errors.New("store unavailable")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}
