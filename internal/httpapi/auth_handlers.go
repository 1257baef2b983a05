package httpapi

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/dmarchuk/accountd/internal/auth"
)

// SignupPayload is the public registration request.
type SignupPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate runs validation rules.
func (p SignupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&p.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(p.Password)),
		),
	)
}

// LoginPayload is the credential pair.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs validation rules.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		return errParseBody(err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	user, err := s.auth.Signup(c.UserContext(), auth.SignupInput{
		Name:            payload.Name,
		Email:           payload.Email,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return sendUser(c, fiber.StatusCreated, user)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return errParseBody(err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	pair, err := s.auth.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return sendTokens(c, pair)
}

// handleRefresh rotates the refresh token presented as a bearer credential.
func (s *Server) handleRefresh(c *fiber.Ctx) error {
	raw, err := auth.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	pair, err := s.auth.Refresh(c.UserContext(), raw)
	if err != nil {
		return err
	}

	return sendTokens(c, pair)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	user := auth.IdentityFromCtx(c)
	if user == nil {
		return auth.ErrMissingToken
	}

	if err := s.auth.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func errParseBody(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

// validateStringEquals checks that both values match.
func validateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
