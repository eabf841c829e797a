// Package health provides the liveness probe endpoint.
package health

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/web/handler"
)

const (
	// Path is the path of the health endpoint.
	Path = "/healthz"
)

// Service is the health handler service.
type Service struct {
	db *gorm.DB
}

// Handler is the health handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the health handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get reports process and database liveness.
func (s *Service) Get(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}

	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"db":     err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
