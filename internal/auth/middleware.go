package auth

import (
	"errors"

	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	CtxUserKey     = "user"
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"

	sessionUserIDKey = "user_id"
)

// RequireSession rejects requests without a session bound to an existing
// user. A session whose user was deleted is destroyed.
func RequireSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}

		userID, _ := sess.Get(sessionUserIDKey).(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		user, err := repository.Users.Get(c.UserContext(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			_ = sess.Destroy()
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err != nil {
			return err
		}

		c.Locals(CtxUserKey, user)
		c.Locals(CtxUserIDKey, user.ID)
		c.Locals(CtxUserRoleKey, user.Role)
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role unavailable")
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed")
	}
}

// CurrentUser returns the user attached by RequireSession, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(CtxUserKey).(*models.User)
	return u
}
