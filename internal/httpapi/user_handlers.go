package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"

	"github.com/dmarchuk/accountd/internal/auth"
	"github.com/dmarchuk/accountd/internal/store"
)

func (s *Server) handleGetMe(c *fiber.Ctx) error {
	user := auth.IdentityFromCtx(c)
	if user == nil {
		return auth.ErrMissingToken
	}
	return sendUser(c, fiber.StatusOK, user)
}

// UpdateMePayload carries the self-service profile fields. Role and
// password deliberately absent.
type UpdateMePayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`
}

// Validate runs validation rules.
func (p UpdateMePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, is.Email),
	)
}

func (s *Server) handleUpdateMe(c *fiber.Ctx) error {
	user := auth.IdentityFromCtx(c)
	if user == nil {
		return auth.ErrMissingToken
	}

	payload := new(UpdateMePayload)
	if err := c.BodyParser(payload); err != nil {
		return errParseBody(err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	updated, err := s.users.Update(c.UserContext(), user.ID, store.UserUpdate{
		Name:  payload.Name,
		Email: payload.Email,
		Photo: payload.Photo,
	})
	if err != nil {
		return err
	}

	return sendUser(c, fiber.StatusOK, updated)
}

// DeactivatePayload re-supplies the current password.
type DeactivatePayload struct {
	Password string `json:"password"`
}

func (s *Server) handleDeactivateMe(c *fiber.Ctx) error {
	user := auth.IdentityFromCtx(c)
	if user == nil {
		return auth.ErrMissingToken
	}

	payload := new(DeactivatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errParseBody(err)
	}

	if err := s.auth.Deactivate(c.UserContext(), user, payload.Password); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return sendUsers(c, users)
}

// CreateUserPayload is the admin create request; unlike public signup it
// may set a role.
type CreateUserPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate runs validation rules.
func (p CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Role, validation.In(string(store.RoleUser), string(store.RoleAdmin))),
	)
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	payload := new(CreateUserPayload)
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
		ConfirmPassword: payload.Password,
		Role:            store.Role(payload.Role),
	})
	if err != nil {
		return err
	}

	return sendUser(c, fiber.StatusCreated, user)
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return sendUser(c, fiber.StatusOK, user)
}

// UpdateUserPayload is the admin patch; it may also change the role.
type UpdateUserPayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role"`
}

// Validate runs validation rules.
func (p UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&p.Role, validation.In(string(store.RoleUser), string(store.RoleAdmin))),
	)
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	payload := new(UpdateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		return errParseBody(err)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	updated, err := s.users.Update(c.UserContext(), c.Params("id"), store.UserUpdate{
		Name:  payload.Name,
		Email: payload.Email,
		Photo: payload.Photo,
		Role:  payload.Role,
	})
	if err != nil {
		return err
	}

	return sendUser(c, fiber.StatusOK, updated)
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	if err := s.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
