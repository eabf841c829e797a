// Package directory provides the administrative endpoints for the
// operator-editable directory settings: the connection document, a
// service-bind probe, and the two OU allow-lists.
package directory

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/wysehawk/casedesk/internal/auth"
	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/dirconfig"
	"github.com/wysehawk/casedesk/internal/web/handler"
	authmw "github.com/wysehawk/casedesk/internal/web/middleware/auth"
)

const (
	// Path is the base path of the directory admin endpoints.
	Path = "/admin/directory"
)

var validate = validator.New() //nolint:gochecknoglobals

// Service is the directory admin handler service.
type Service struct {
	cfg       *config.Config
	manager   *dirconfig.Manager
	directory *auth.DirectoryProvider
}

// Handler is the directory admin handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the directory admin handler. Routes require a bearer
// token whose primary role grants full access to the Settings/Auth area.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	manager *dirconfig.Manager,
	directory *auth.DirectoryProvider,
	tokens *auth.TokenIssuer,
) error {
	if app == nil || cfg == nil || manager == nil || directory == nil || tokens == nil {
		return errors.New("app, cfg, manager, directory or tokens is nil")
	}

	s.cfg = cfg
	s.manager = manager
	s.directory = directory

	guard := authmw.RequireFullAccess(cfg.Auth.SuperAdmin, "Settings", "Auth")

	app.Route(Path, func(router fiber.Router) {
		router.Use(authmw.New(tokens), guard)
		router.Get("/settings", s.GetSettings)
		router.Post("/settings", s.SaveSettings)
		router.Post("/test", s.TestConnection)
		router.Get("/ou-allowlist/:context", s.GetAllowlist)
		router.Put("/ou-allowlist/:context", s.SaveAllowlist)
	})

	return nil
}

// GetSettings returns the saved directory connection settings.
func (s *Service) GetSettings(c *fiber.Ctx) error {
	settings := s.manager.Directory()
	if !settings.Configured() {
		return c.Status(fiber.StatusNotFound).JSON(handler.Response{
			Success: false,
			Message: "No directory configuration found",
		})
	}

	// never hand the service secret back to the UI
	settings.BindCredentials = ""

	return c.JSON(fiber.Map{"success": true, "config": settings})
}

// SaveSettings validates and persists new directory connection settings.
func (s *Service) SaveSettings(c *fiber.Ctx) error {
	var settings dirconfig.Directory

	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Invalid directory configuration",
		})
	}

	if err := validate.Struct(settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Invalid directory configuration: " + err.Error(),
		})
	}

	if err := s.manager.SaveDirectory(settings); err != nil {
		log.Error().Err(err).Msg("failed to save directory configuration")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.Response{
			Success: false,
			Message: "Failed to save directory configuration",
		})
	}

	return c.JSON(handler.Response{Success: true, Message: "Directory configuration saved"})
}

// TestConnection dials the submitted settings and performs a service bind
// without persisting anything.
func (s *Service) TestConnection(c *fiber.Ctx) error {
	var settings dirconfig.Directory

	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Invalid directory configuration",
		})
	}

	if err := s.directory.TestServiceBind(settings); err != nil {
		return c.JSON(handler.Response{
			Success: false,
			Message: "Service bind failed: " + err.Error(),
		})
	}

	return c.JSON(handler.Response{Success: true, Message: "Service bind successful"})
}

// allowlistBody is the allow-list update payload, matching the persisted
// document shape.
type allowlistBody struct {
	AllowedOUs []string `json:"allowedOUs"`
}

// GetAllowlist returns the OU allow-list for the given context.
func (s *Service) GetAllowlist(c *fiber.Ctx) error {
	fctx, err := filterContext(c.Params("context"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"allowedOUs": s.manager.AllowedOUs(fctx),
	})
}

// SaveAllowlist persists a new OU allow-list for the given context.
func (s *Service) SaveAllowlist(c *fiber.Ctx) error {
	fctx, err := filterContext(c.Params("context"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: err.Error(),
		})
	}

	var body allowlistBody

	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Invalid allow-list",
		})
	}

	if err := s.manager.SaveAllowedOUs(fctx, body.AllowedOUs); err != nil {
		log.Error().Err(err).Msg("failed to save OU allow-list")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.Response{
			Success: false,
			Message: "Failed to save allow-list",
		})
	}

	return c.JSON(handler.Response{Success: true, Message: "Allow-list saved"})
}

func filterContext(name string) (dirconfig.FilterContext, error) {
	switch name {
	case string(dirconfig.ContextOperator):
		return dirconfig.ContextOperator, nil
	case string(dirconfig.ContextCustomer):
		return dirconfig.ContextCustomer, nil
	default:
		return "", errors.New("unknown allow-list context")
	}
}
