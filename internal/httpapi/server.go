package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aaronromeo/fitstats/internal/oauth"
	"github.com/gofiber/fiber/v2"
)

// NewServer serves the redirect-based OAuth flow for each manager, keyed by
// provider name.
func NewServer(managers map[string]*oauth.Manager, stateSecret []byte, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ReadTimeout: 30 * time.Second, WriteTimeout: 60 * time.Second})
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	registerOAuth(app, managers, stateSecret, logger)
	return app
}
