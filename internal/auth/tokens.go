package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Claims is the signed claim set carried by both token kinds. Only the
// subject (user id) is meaningful; refresh tokens omit the expiry claim
// because revocation is list-membership based, not time based.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies the two token kinds. Access tokens are
// short-lived HS256 tokens; refresh tokens are HS256 tokens without an
// expiry, signed with a separate secret.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	now           func() time.Time
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithClock overrides the time source. Useful in tests.
func WithClock(fn func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if fn != nil {
			ts.now = fn
		}
	}
}

// NewTokenService creates a TokenService with the given secrets and access
// token lifetime.
func NewTokenService(accessSecret, refreshSecret string, accessTTL time.Duration, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// IssueAccess signs a short-lived access token for the given user.
func (ts *TokenService) IssueAccess(userID string) (string, error) {
	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
	}
	return ts.sign(claims, ts.accessSecret)
}

// IssueRefresh signs a refresh token for the given user. No expiry claim:
// the token stays valid until rotated out of the user's list or revoked.
func (ts *TokenService) IssueRefresh(userID string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(ts.now()),
		},
	}
	return ts.sign(claims, ts.refreshSecret)
}

// VerifyAccess parses and validates an access token.
func (ts *TokenService) VerifyAccess(raw string) (*Claims, error) {
	return ts.verify(raw, ts.accessSecret)
}

// VerifyRefresh parses and validates a refresh token's signature.
func (ts *TokenService) VerifyRefresh(raw string) (*Claims, error) {
	return ts.verify(raw, ts.refreshSecret)
}

func (ts *TokenService) sign(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

func (ts *TokenService) verify(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
