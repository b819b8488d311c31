package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-login-portal/internal/domain/entity"
	"github.com/oksasatya/go-login-portal/internal/domain/repository"
)

const uniqueViolation = "23505"

// storeFailure keeps the ErrUnavailable sentinel for errors.Is branching
// while carrying the backend detail through to operator logs.
func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
}

func createError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateUsername
	}
	return storeFailure(err)
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, firstname, username, email, password
		FROM users
		WHERE username = $1
	`, username)

	if err := row.Scan(&u.ID, &u.Firstname, &u.Username, &u.Email, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeFailure(err)
	}

	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	// The signup form collects no firstname; mirror the username.
	if u.Firstname == "" {
		u.Firstname = u.Username
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (firstname, username, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Firstname, u.Username, u.Email, u.Password)

	if err := row.Scan(&u.ID); err != nil {
		return createError(err)
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password = $1
		WHERE username = $2
	`, passwordHash, username)
	if err != nil {
		return storeFailure(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
