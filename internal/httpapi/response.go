package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmarchuk/accountd/internal/auth"
	"github.com/dmarchuk/accountd/internal/store"
)

// sendUser renders a single sanitized user record. The model's JSON tags
// keep the password hash, refresh tokens and active flag out of the body.
func sendUser(c *fiber.Ctx, code int, user *store.User) error {
	return c.Status(code).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": user},
	})
}

// sendTokens renders a login/refresh result: both tokens plus the user.
func sendTokens(c *fiber.Ctx, pair *auth.TokenPair) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       "success",
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"data":         fiber.Map{"user": pair.User},
	})
}

// sendUsers renders a list with its result count.
func sendUsers(c *fiber.Ctx, users []*store.User) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"results": len(users),
		"data":    fiber.Map{"users": users},
	})
}
