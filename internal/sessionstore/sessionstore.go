// Package sessionstore builds the server side session store used by the
// admin login. Sessions live in process memory unless Redis is configured.
package sessionstore

import (
	"crypto/sha256"
	"encoding/base64"

	"autocatalog-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const CookieName = "autocatalog_session"

// New returns a cookie keyed session store. A nil storage selects Fiber's
// in-memory storage.
func New(cfg *config.Config, storage fiber.Storage) *session.Store {
	sc := session.Config{
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:" + CookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !cfg.IsDevelopment(),
	}
	if storage != nil {
		sc.Storage = storage
	}
	return session.New(sc)
}

// CookieKey derives the AES-256 cookie encryption key from the session secret.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// EncryptCookies encrypts the session cookie value with a key derived from
// the session secret, so a leaked store key alone cannot be replayed.
func EncryptCookies(secret string) fiber.Handler {
	return encryptcookie.New(encryptcookie.Config{
		Key: CookieKey(secret),
	})
}
