package i18n

import (
	"github.com/gofiber/fiber/v2"
)

type MessagesResponse struct {
	Language  string         `json:"language"`
	Languages []string       `json:"languages"`
	Messages  map[string]any `json:"messages"`
}

// GET /api/i18n?lang=
func NegotiatedMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := Negotiate(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))
		msgs, _ := Messages(lang)
		return c.JSON(MessagesResponse{
			Language:  lang,
			Languages: Languages,
			Messages:  msgs,
		})
	}
}

// GET /api/i18n/:lang
func LanguageMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		msgs, ok := Messages(c.Params("lang"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "language not supported")
		}
		return c.JSON(msgs)
	}
}
