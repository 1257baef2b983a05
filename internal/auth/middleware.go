package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/dmarchuk/accountd/internal/logging"
	"github.com/dmarchuk/accountd/internal/store"
)

// IdentityKey is the fiber Locals key under which Protect stores the
// resolved user.
const IdentityKey = "identity"

const bearerScheme = "Bearer"

// Middleware guards routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenService
	users  store.Users
	logger logging.Logger
}

// NewMiddleware builds the auth middleware against the given token service
// and credential store.
func NewMiddleware(tokens *TokenService, users store.Users, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		tokens: tokens,
		users:  users,
		logger: logging.NewDefault(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithMiddlewareLogger sets a custom logger.
func WithMiddlewareLogger(l logging.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// Protect authenticates the request: extract the bearer token, verify it as
// an access token, resolve an active user from the subject claim and stash
// it in Locals. Never mutates persisted state.
func (m *Middleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		claims, err := m.tokens.VerifyAccess(raw)
		if err != nil {
			return err
		}

		user, err := m.users.GetByID(c.UserContext(), claims.Subject)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		c.Locals(IdentityKey, user)
		return c.Next()
	}
}

// RequireRoles authorizes the already-attached identity against an
// allow-list of roles fixed at route-registration time. Must run after
// Protect.
func RequireRoles(roles ...store.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := IdentityFromCtx(c)
		if user == nil {
			return ErrMissingToken
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return ErrForbidden
	}
}

// IdentityFromCtx returns the user attached by Protect, or nil.
func IdentityFromCtx(c *fiber.Ctx) *store.User {
	user, _ := c.Locals(IdentityKey).(*store.User)
	return user
}

// TokenFromHeader extracts a bearer token from an Authorization header
// value. The scheme comparison is case-insensitive; the scheme must be
// followed by a space.
func TokenFromHeader(header string) (string, error) {
	l := len(bearerScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], bearerScheme) && header[l] == ' ' {
		token := strings.TrimSpace(header[l+1:])
		if token != "" {
			return token, nil
		}
	}
	return "", ErrMissingToken
}
