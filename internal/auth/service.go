// Package auth implements the authentication subsystem: password hashing,
// token issuance and verification, the request middleware, and the session
// lifecycle (signup, login, refresh rotation, logout, deactivation).
package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/dmarchuk/accountd/internal/logging"
	"github.com/dmarchuk/accountd/internal/store"
)

// Service orchestrates the session lifecycle. Each transition is a single
// persisted write; concurrent transitions on the same user are not isolated
// against each other.
type Service struct {
	users  store.Users
	tokens *TokenService
	logger logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires the lifecycle controller to its collaborators.
func NewService(users store.Users, tokens *TokenService, opts ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		logger: logging.NewDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupInput is the validated signup request. Role is only settable by the
// admin create-user path; the public signup payload never carries it.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            store.Role
}

// TokenPair is the result of login and refresh: fresh credentials plus the
// user they belong to.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *store.User
}

// Signup creates a new user with a hashed password and an empty
// refresh-token list. Field validation happens at the HTTP boundary; the
// confirm-password equality check is enforced here as well so no caller can
// bypass it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*store.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, goerrors.New("passwords do not match", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	role := in.Role
	if role == "" {
		role = store.RoleUser
	}
	if !store.ValidRole(role) {
		return nil, goerrors.New("unknown or invalid role", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &store.User{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Email:         store.NormalizeEmail(in.Email),
		Role:          role,
		PasswordHash:  hash,
		Active:        true,
		RefreshTokens: []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials, appends a fresh refresh token to the user's
// list and issues an access token. Unknown users and wrong passwords fail
// identically.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, goerrors.New("please provide email and password", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login rejected", "user_id", user.ID)
		return nil, err
	}

	return s.rotate(ctx, user)
}

// Refresh rotates a presented refresh token. An empty stored list means
// every session was revoked, so no presented token is acceptable. A
// presented token that is not the newest entry, once the list holds at
// least two tokens, is treated as replay: the whole list is revoked and the
// call fails. The check is a heuristic, not a cryptographic guarantee.
func (s *Service) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if len(user.RefreshTokens) == 0 {
		return nil, ErrInvalidToken
	}

	if len(user.RefreshTokens) >= 2 && raw != user.NewestRefreshToken() {
		s.logger.Warn("refresh token replay detected, revoking all sessions", "user_id", user.ID)
		if err := s.users.SetRefreshTokens(ctx, user.ID, nil); err != nil {
			return nil, err
		}
		return nil, ErrTokenReuse
	}

	return s.rotate(ctx, user)
}

// Logout revokes every refresh token the user holds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.users.SetRefreshTokens(ctx, userID, nil)
}

// Deactivate soft-deletes the account after re-verifying the current
// password. The user disappears from all default lookups, including login.
func (s *Service) Deactivate(ctx context.Context, user *store.User, password string) error {
	if password == "" {
		return goerrors.New("please provide your password", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return goerrors.New("incorrect password", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	if err := s.users.Deactivate(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info("user deactivated", "user_id", user.ID)
	return nil
}

// rotate appends a new refresh token, persists the list and mints an access
// token. Single document write; the append-then-save sequence can race with
// a concurrent rotation for the same user.
func (s *Service) rotate(ctx context.Context, user *store.User) (*TokenPair, error) {
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	list := append(user.RefreshTokens, refresh)
	if err := s.users.SetRefreshTokens(ctx, user.ID, list); err != nil {
		return nil, err
	}
	user.RefreshTokens = list

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
