// Package checkhandle provides the existence probe the UI's two-step login
// flow uses to tell user handles from organization-only (customer)
// identities before asking for a secret.
package checkhandle

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/db/store"
	"github.com/wysehawk/casedesk/internal/web/handler"
)

const (
	// Path is the path of the check-handle endpoint.
	Path = "/check-handle"

	// TypeUser marks a handle backed by a provisioned user record.
	TypeUser = "user"
	// TypeCustomer marks a handle matching an organization name only.
	TypeCustomer = "customer"
)

// Service is the check-handle handler service.
type Service struct {
	cfg   *config.Config
	store *store.Store
}

// Handler is the check-handle handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the check-handle handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	st, err := store.New(db)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.store = st

	app.Get(Path, s.Get)

	return nil
}

// Get reports whether the handle belongs to a user, an organization-only
// customer identity, or nothing.
func (s *Service) Get(c *fiber.Ctx) error {
	handleParam := c.Query("handle")
	if handleParam == "" {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Missing handle",
		})
	}

	ctx := c.UserContext()

	if _, err := s.store.UserByHandle(ctx, handleParam); err == nil {
		return c.JSON(fiber.Map{"type": TypeUser})
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("check-handle user lookup failed")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if _, err := s.store.OrganizationByName(ctx, handleParam); err == nil {
		return c.JSON(fiber.Map{"type": TypeCustomer})
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Msg("check-handle organization lookup failed")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusNotFound).JSON(handler.Response{
		Success: false,
		Message: "Username not found",
	})
}
