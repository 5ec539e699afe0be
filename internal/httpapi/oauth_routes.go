package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/aaronromeo/fitstats/internal/oauth"
	"github.com/gofiber/fiber/v2"
)

// OAuth endpoints (single user). Tokens go to the provider's store and are
// never echoed back.

func registerOAuth(app *fiber.App, managers map[string]*oauth.Manager, stateSecret []byte, logger *slog.Logger) {
	unknown := func(c *fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "unknown provider"})
	}

	app.Get("/oauth/:provider/start", func(c *fiber.Ctx) error {
		m, ok := managers[c.Params("provider")]
		if !ok {
			return unknown(c)
		}
		state, err := oauth.SignState(stateSecret)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Redirect(m.AuthorizeURL(state), http.StatusFound)
	})

	app.Get("/oauth/:provider/callback", func(c *fiber.Ctx) error {
		m, ok := managers[c.Params("provider")]
		if !ok {
			return unknown(c)
		}
		if e := c.Query("error"); e != "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": e})
		}
		if err := oauth.VerifyState(stateSecret, c.Query("state"), oauth.StateMaxAge); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid state"})
		}
		code := c.Query("code")
		if code == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "missing code"})
		}
		tok, err := m.Exchange(c.UserContext(), code)
		if err != nil {
			logger.Error("token exchange failed", "provider", m.Provider().Name, "error", err)
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "token exchange failed"})
		}
		return c.JSON(fiber.Map{
			"provider":   m.Provider().Name,
			"status":     "authorized",
			"expires_at": tok.Expiry(),
		})
	})
}
