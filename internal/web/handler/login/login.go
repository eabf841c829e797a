// Package login provides the HTTP login endpoint: the entry point of the
// authenticate-then-resolve pipeline.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/wysehawk/casedesk/internal/auth"
	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = "/login"
)

// outcomes counts finished login attempts by caller-visible outcome.
var outcomes *prometheus.CounterVec //nolint:gochecknoglobals

func loginOutcomes() *prometheus.CounterVec {
	if outcomes == nil {
		outcomes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Number of finished login attempts, differentiated by outcome.",
			},
			[]string{"outcome"},
		)
	}

	return outcomes
}

var validate = validator.New() //nolint:gochecknoglobals

// Body is the login request payload.
type Body struct {
	Handle           string `json:"username" validate:"required"`
	Secret           string `json:"password" validate:"required"`
	Mode             string `json:"authType" validate:"omitempty,oneof=local domain hybrid"`
	OrganizationHint string `json:"organization"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	resolver *auth.Resolver
	counter  *prometheus.CounterVec
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, resolver *auth.Resolver) error {
	if app == nil || cfg == nil || resolver == nil {
		return errors.New("app, cfg or resolver is nil")
	}

	s.cfg = cfg
	s.resolver = resolver
	s.counter = loginOutcomes()

	app.Post(Path, s.Post)

	return nil
}

// Post handles a login attempt.
func (s *Service) Post(c *fiber.Ctx) error {
	var body Body

	if err := c.BodyParser(&body); err != nil {
		s.counter.WithLabelValues("bad_request").Inc()

		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Missing credentials",
		})
	}

	if err := validate.Struct(body); err != nil {
		s.counter.WithLabelValues("bad_request").Inc()

		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Missing credentials",
		})
	}

	result, err := s.resolver.Login(c.UserContext(), auth.Request{
		Handle:           body.Handle,
		Secret:           body.Secret,
		Mode:             auth.Mode(body.Mode),
		OrganizationHint: body.OrganizationHint,
	})
	if err != nil {
		return s.reject(c, err)
	}

	s.counter.WithLabelValues("success").Inc()

	return c.JSON(handler.Response{
		Success: true,
		Token:   result.Token,
		User:    result.Claims,
	})
}

// reject maps a resolver error onto its HTTP status and caller-visible
// message. Authentication failures share one generic message; authorization
// failures are explicit.
func (s *Service) reject(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		s.counter.WithLabelValues("bad_request").Inc()

		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Missing credentials",
		})

	case errors.Is(err, auth.ErrUnknownMode):
		s.counter.WithLabelValues("bad_request").Inc()

		return c.Status(fiber.StatusBadRequest).JSON(handler.Response{
			Success: false,
			Message: "Unknown authentication mode",
		})

	case errors.Is(err, auth.ErrInvalidCredentials):
		s.counter.WithLabelValues("invalid_credentials").Inc()

		return c.Status(fiber.StatusUnauthorized).JSON(handler.Response{
			Success: false,
			Message: "Invalid username or password",
		})

	case errors.Is(err, auth.ErrFeatureDisabled):
		s.counter.WithLabelValues("feature_disabled").Inc()

		return c.Status(fiber.StatusForbidden).JSON(handler.Response{
			Success: false,
			Message: "Access denied: directory role is disabled",
		})

	case errors.Is(err, auth.ErrNoValidOrganization):
		s.counter.WithLabelValues("no_valid_organization").Inc()

		return c.Status(fiber.StatusForbidden).JSON(handler.Response{
			Success: false,
			Message: "Access denied",
		})

	case errors.Is(err, auth.ErrCustomerNotProvisioned):
		s.counter.WithLabelValues("customer_not_provisioned").Inc()

		return c.Status(fiber.StatusForbidden).JSON(handler.Response{
			Success: false,
			Message: "Customer is not provisioned for directory access",
		})

	case errors.Is(err, auth.ErrPrincipalNotFound):
		s.counter.WithLabelValues("not_found").Inc()

		return c.Status(fiber.StatusNotFound).JSON(handler.Response{
			Success: false,
			Message: "User not found",
		})

	case errors.Is(err, auth.ErrServiceUnavailable):
		s.counter.WithLabelValues("service_unavailable").Inc()

		return c.Status(fiber.StatusInternalServerError).JSON(handler.Response{
			Success: false,
			Message: "Directory service unavailable",
		})

	default:
		s.counter.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("login failed unexpectedly")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.Response{
			Success: false,
			Message: "Internal server error",
		})
	}
}
