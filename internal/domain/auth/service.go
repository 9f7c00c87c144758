// Package auth implements the Register and Login business logic: user
// creation, password hashing, and JWT issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naviai/naviai/internal/i18n"
	pkgauth "github.com/naviai/naviai/pkg/auth"
	"github.com/naviai/naviai/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login when email or password is incorrect.
// Using a single error for both cases avoids leaking whether an email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is already taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// RegisterInput holds the data needed to create a new user account.
// Locale is normalized to a supported tag; empty means the default.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Locale   string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after successful Register or Login.
// Token is a signed JWT carrying the UserID claim.
type Result struct {
	Token    string
	UserID   string
	Email    string
	FullName string
	Locale   string
}

// Service defines the authentication business operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)

	// Locale returns the stored locale preference for userID. Unknown users
	// and lookup failures yield the default locale.
	Locale(ctx context.Context, userID string) string
}

type service struct {
	db *sql.DB
}

// NewService creates a new auth Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Register creates a new user and returns a JWT.
// Password is hashed with bcrypt before storage; plaintext is never stored.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.NewV7().String()
	locale := i18n.Normalize(input.Locale)
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, locale, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, input.Email, hash, input.FullName, locale, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := pkgauth.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &Result{
		Token:    token,
		UserID:   userID,
		Email:    input.Email,
		FullName: input.FullName,
		Locale:   locale,
	}, nil
}

// Login verifies credentials and returns a JWT.
// Always returns ErrInvalidCredentials for any failure (email not found OR
// wrong password) to avoid revealing whether the email exists.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	var userID, email, fullName, locale string
	var passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, locale
		FROM users
		WHERE email = ?
		LIMIT 1
	`, input.Email).Scan(&userID, &email, &passwordHash, &fullName, &locale)

	if err != nil {
		// Whether the user doesn't exist or there's a DB error, return generic message
		return nil, ErrInvalidCredentials
	}

	if !passwordHash.Valid || passwordHash.String == "" {
		return nil, ErrInvalidCredentials
	}

	// Constant-time comparison via bcrypt
	if !pkgauth.VerifyPassword(passwordHash.String, input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &Result{
		Token:    token,
		UserID:   userID,
		Email:    email,
		FullName: fullName,
		Locale:   locale,
	}, nil
}

// Locale returns the user's stored locale, normalized to a supported tag.
func (s *service) Locale(ctx context.Context, userID string) string {
	var locale string
	err := s.db.QueryRowContext(ctx, `
		SELECT locale FROM users WHERE id = ?
	`, userID).Scan(&locale)
	if err != nil {
		return i18n.DefaultLocale
	}
	return i18n.Normalize(locale)
}

// isUniqueViolation checks if an SQLite error is a UNIQUE constraint violation.
// SQLite surfaces this as an error message containing "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
