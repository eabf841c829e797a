// Package session provides the session re-hydration endpoint: the UI
// presents its bearer token and gets the embedded claims back without a
// re-login.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wysehawk/casedesk/internal/auth"
	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/web/handler"
	authmw "github.com/wysehawk/casedesk/internal/web/middleware/auth"
)

const (
	// Path is the path of the session endpoint.
	Path = "/session"
)

// Service is the session handler service.
type Service struct {
	cfg *config.Config
}

// Handler is the session handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the session handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, tokens *auth.TokenIssuer) error {
	if app == nil || cfg == nil || tokens == nil {
		return errors.New("app, cfg or tokens is nil")
	}

	s.cfg = cfg

	app.Get(Path, authmw.New(tokens), s.Get)

	return nil
}

// Get returns the claims carried by the presented token.
func (s *Service) Get(c *fiber.Ctx) error {
	claims := authmw.Claims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{
			Success: false,
			Message: "Invalid token",
		})
	}

	return c.JSON(handler.Response{
		Success: true,
		User:    claims,
	})
}
