// Package httpapi wires the HTTP surface: routing, payload validation, and
// the centralized error responder.
package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	goerrors "github.com/goliatone/go-errors"

	"github.com/dmarchuk/accountd/internal/auth"
	"github.com/dmarchuk/accountd/internal/logging"
	"github.com/dmarchuk/accountd/internal/store"
)

// Config collects the server's collaborators.
type Config struct {
	Auth       *auth.Service
	Middleware *auth.Middleware
	Users      store.Users
	Logger     logging.Logger
	// Debug exposes internal error messages in responses. Never enable in
	// production.
	Debug bool
}

// Server is the HTTP front of the service.
type Server struct {
	app    *fiber.App
	auth   *auth.Service
	mw     *auth.Middleware
	users  store.Users
	logger logging.Logger
	debug  bool
}

// New builds the fiber application and registers all routes.
func New(cfg Config) *Server {
	s := &Server{
		auth:   cfg.Auth,
		mw:     cfg.Middleware,
		users:  cfg.Users,
		logger: cfg.Logger,
		debug:  cfg.Debug,
	}
	if s.logger == nil {
		s.logger = logging.NewDefault()
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "accountd",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(fiberlogger.New())

	s.registerRoutes()
	return s
}

// App exposes the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	protect := s.mw.Protect()
	adminOnly := auth.RequireRoles(store.RoleAdmin)

	authGrp := s.app.Group("/auth")
	authGrp.Post("/signup", s.handleSignup)
	authGrp.Post("/login", s.handleLogin)
	authGrp.Post("/token", s.handleRefresh)
	authGrp.Post("/logout", protect, s.handleLogout)

	users := s.app.Group("/users", protect)
	users.Patch("/deactivateMe", s.handleDeactivateMe)
	users.Patch("/updateMe", s.handleUpdateMe)
	users.Get("/me", s.handleGetMe)

	users.Get("/", adminOnly, s.handleListUsers)
	users.Post("/", adminOnly, s.handleCreateUser)
	users.Get("/:id", adminOnly, s.handleGetUser)
	users.Patch("/:id", adminOnly, s.handleUpdateUser)
	users.Delete("/:id", adminOnly, s.handleDeleteUser)

	// catch-all for unmatched routes
	s.app.Use(func(c *fiber.Ctx) error {
		return store.ErrNotFound
	})
}

// errorEnvelope is the uniform error body: {"status": 404, "message": "..."}.
type errorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// errorHandler is the single funnel every handler error flows through. It
// maps error kinds to status codes; internals never leak unless Debug.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(errorEnvelope{
			Status:  fiber.StatusBadRequest,
			Message: ve.Error(),
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorEnvelope{
			Status:  fe.Code,
			Message: fe.Message,
		})
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		code := richErr.Code
		if code == 0 {
			code = statusFromCategory(richErr)
		}

		message := richErr.Message
		if code >= fiber.StatusInternalServerError {
			s.logger.Error("request failed", "error", err, "path", c.OriginalURL())
			if !s.debug {
				message = "something went wrong"
			}
		}

		return c.Status(code).JSON(errorEnvelope{Status: code, Message: message})
	}

	s.logger.Error("unhandled error", "error", err, "path", c.OriginalURL())
	message := "something went wrong"
	if s.debug {
		message = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(errorEnvelope{
		Status:  fiber.StatusInternalServerError,
		Message: message,
	})
}

func statusFromCategory(err *goerrors.Error) int {
	switch err.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
