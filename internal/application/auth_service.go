package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-login-portal/internal/domain/entity"
	repo "github.com/oksasatya/go-login-portal/internal/domain/repository"
	"github.com/oksasatya/go-login-portal/pkg/helpers"
	"github.com/oksasatya/go-login-portal/pkg/validation"
)

var (
	// ErrInvalidCredentials is deliberately generic: login never reveals
	// which of username/password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	// ErrUsernameTaken is signup-only; the distinct message is an accepted
	// enumeration trade-off for usability.
	ErrUsernameTaken    = errors.New("username already exists")
	ErrStoreUnavailable = errors.New("store unavailable, try again later")
)

// ValidationError carries a field-specific, user-facing reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

type Service struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewService(r repo.UserRepository, logger *logrus.Logger) *Service {
	return &Service{Repo: r, Logger: logger}
}

type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type ResetInput struct {
	Username           string
	NewPassword        string
	ConfirmNewPassword string
}

// Signup runs the ordered signup checks, short-circuiting on the first
// failure, and creates the user with a freshly salted hash.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	// Existence pre-check is a fast path for a friendly error; the unique
	// constraint below remains the authoritative guard.
	_, err := s.Repo.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case errors.Is(err, repo.ErrNotFound):
		// free to proceed
	default:
		return nil, s.unavailable("signup precheck", in.Username, err)
	}

	if !validation.EmailWellFormed(in.Email) {
		return nil, &ValidationError{Field: "email", Reason: "has an invalid format"}
	}
	if in.Password != in.ConfirmPassword {
		return nil, &ValidationError{Field: "confirm_password", Reason: "does not match password"}
	}
	if !validation.PasswordAcceptable(in.Password) {
		return nil, &ValidationError{Field: "password", Reason: "must be at least 6 characters long"}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Firstname: in.Username,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			// lost the check-then-insert race; same reason as the pre-check
			return nil, ErrUsernameTaken
		}
		return nil, s.unavailable("signup insert", in.Username, err)
	}
	return u, nil
}

// Authenticate validates a username/password pair without touching session
// state.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.unavailable("login lookup", username, err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetProfile fetches a fresh copy of the user record; no in-memory cache
// exists.
func (s *Service) GetProfile(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.unavailable("profile lookup", username, err)
	}
	return u, nil
}

// VerifyReset is step one of the reset flow: the username must exist. The
// submitted email is collected but not cross-checked against the record.
func (s *Service) VerifyReset(ctx context.Context, username string) error {
	_, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return s.unavailable("reset verify", username, err)
	}
	return nil
}

// ResetPassword is step two: validate the new password, re-confirm the
// username still exists, then replace the stored hash.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if !validation.PasswordAcceptable(in.NewPassword) {
		return &ValidationError{Field: "new_password", Reason: "must be at least 6 characters long"}
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return &ValidationError{Field: "confirm_new_password", Reason: "does not match new password"}
	}

	if err := s.VerifyReset(ctx, in.Username); err != nil {
		return err
	}

	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, in.Username, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// username vanished between the re-check and the update
			return ErrUserNotFound
		}
		return s.unavailable("reset update", in.Username, err)
	}
	return nil
}

// unavailable logs the backend failure for operators and returns the
// generic, user-safe condition.
func (s *Service) unavailable(op, username string, err error) error {
	if s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"op":       op,
			"username": username,
		}).Error("credential store unavailable")
	}
	return ErrStoreUnavailable
}
