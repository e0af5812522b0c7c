// Package service implements the business rules of the portfolio API:
// account signup and login, token revocation, the portfolio record stores
// and the contact notifier. Persistence and transport are delegated to the
// small interfaces declared next to each service.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/auth"
	"github.com/atinyakov/portfolio-api/internal/models"
)

// Client-facing messages of the auth flow.
const (
	MsgUserExists         = "User with this email already exists."
	MsgUserNotFound       = "User does not exist"
	MsgInvalidCredentials = "Invalid Credentials"
	MsgUnauthenticated    = "Unauthorized"
	MsgPasswordTooLong    = "password must be at most 72 bytes"
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser inserts u. A taken email is reported as apperr.ErrConflict.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail returns the user or apperr.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Hasher derives and checks password digests.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(c models.Claims) (string, time.Time, error)
	Verify(token string) (models.Claims, error)
}

// Blacklist records revoked tokens until they expire.
type Blacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

// SignUpInput is a validated signup request.
type SignUpInput struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
	// Role defaults to models.RoleUser when empty.
	Role models.Role
}

// AuthService implements signup, login, logout and token authentication.
type AuthService struct {
	users   UserRepository
	hasher  Hasher
	tokens  TokenIssuer
	revoked Blacklist
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(users UserRepository, hasher Hasher, tokens TokenIssuer, revoked Blacklist) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, revoked: revoked}
}

// SignUp hashes the password and stores a new account. The email is
// normalized to lower case before insert.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (models.UserSummary, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.UserSummary{}, apperr.New(apperr.ErrBadRequest, "role must be one of USER, ADMIN")
	}

	digest, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.UserSummary{}, apperr.Wrap(apperr.ErrBadRequest, MsgPasswordTooLong, err)
	}
	if err != nil {
		return models.UserSummary{}, err
	}

	u := &models.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: digest,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Role:         role,
		IsFirstLogin: true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return models.UserSummary{}, apperr.Wrap(apperr.ErrConflict, MsgUserExists, err)
		}
		return models.UserSummary{}, fmt.Errorf("create user: %w", err)
	}
	return u.Summary(), nil
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Wrap(apperr.ErrNotFound, MsgUserNotFound, err)
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", apperr.New(apperr.ErrInvalidCredentials, MsgInvalidCredentials)
	}

	token, _, err := s.tokens.Issue(models.Claims{Email: u.Email, Subject: u.ID, Role: u.Role})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Logout revokes token until its natural expiry. Revoking the same token
// twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return apperr.Wrap(apperr.ErrUnauthenticated, MsgUnauthenticated, err)
	}
	if err := s.revoked.Add(ctx, token, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenBlacklisted reports whether token has been revoked.
func (s *AuthService) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	return s.revoked.Contains(ctx, token)
}

// ValidateUser resolves verified claims to the stored account. It returns a
// nil identity when the email no longer belongs to an account. The role is
// taken from the stored account, not from the token.
func (s *AuthService) ValidateUser(ctx context.Context, claims models.Claims) (*models.Identity, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(claims.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &models.Identity{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// Authenticate runs the guard pipeline for a bearer token: verify the
// signature and expiry, reject revoked tokens, then resolve the account.
// Every rejection is apperr.ErrUnauthenticated. Store failures are
// returned as faults.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, apperr.New(apperr.ErrUnauthenticated, MsgUnauthenticated)
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return models.Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, MsgUnauthenticated, err)
	}
	revoked, err := s.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return models.Identity{}, apperr.New(apperr.ErrUnauthenticated, MsgUnauthenticated)
	}
	id, err := s.ValidateUser(ctx, claims)
	if err != nil {
		return models.Identity{}, err
	}
	if id == nil {
		return models.Identity{}, apperr.New(apperr.ErrUnauthenticated, MsgUnauthenticated)
	}
	return *id, nil
}

// EnsureAdmin creates the bootstrap admin account. An existing account with
// the same email is left as is.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, firstname, lastname string) error {
	_, err := s.SignUp(ctx, SignUpInput{
		Email:     email,
		Password:  password,
		Firstname: firstname,
		Lastname:  lastname,
		Role:      models.RoleAdmin,
	})
	if err != nil && !errors.Is(err, apperr.ErrConflict) {
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
