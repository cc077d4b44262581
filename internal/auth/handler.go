package auth

import (
	"errors"
	"strings"

	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// POST /api/auth/login
func LoginHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}
		body.Username = strings.TrimSpace(body.Username)

		user, err := repository.UserByUsername(c.UserContext(), body.Username)
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(body.Password))
			return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
		}
		if err != nil {
			return err
		}
		if !CheckPassword(user.PasswordHash, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
		}

		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		// new id on privilege change
		if err := sess.Regenerate(); err != nil {
			return err
		}
		sess.Set(sessionUserIDKey, user.ID)
		if err := sess.Save(); err != nil {
			return err
		}

		return c.JSON(toUserResponse(user))
	}
}

// POST /api/auth/logout
func LogoutHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if err := sess.Destroy(); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me, behind RequireSession
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.JSON(toUserResponse(user))
	}
}
