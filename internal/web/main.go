// Package web wires the HTTP surface of the authentication core: the login
// pipeline, session re-hydration, the handle probe and the administrative
// directory-settings endpoints.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/auth"
	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/db/store"
	"github.com/wysehawk/casedesk/internal/dirconfig"
	fiberlogger "github.com/wysehawk/casedesk/internal/logger/adapter/fiber"
	"github.com/wysehawk/casedesk/internal/web/handler/admin/directory"
	"github.com/wysehawk/casedesk/internal/web/handler/checkhandle"
	"github.com/wysehawk/casedesk/internal/web/handler/health"
	"github.com/wysehawk/casedesk/internal/web/handler/login"
	"github.com/wysehawk/casedesk/internal/web/handler/session"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	resolver     *auth.Resolver
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	// Wait interrupt or shutdown request through /shutdown
	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration. The directory
// settings manager is injected so the daemon and the admin endpoints share
// one snapshot.
func New(cfg *config.Config, db *gorm.DB, manager *dirconfig.Manager) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if manager == nil {
		panic("directory settings manager cannot be nil")
	}

	st, err := store.New(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create store")
	}

	// assemble the authentication core
	directoryProvider := auth.NewDirectoryProvider(manager, nil)
	localProvider := auth.NewLocalProvider(st)
	claimsResolver := auth.NewClaimsResolver(st, cfg.Auth.SuperAdmin)
	tokens := auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL.Duration)

	resolver := auth.NewResolver(
		auth.ResolverConfig{
			SuperAdmin:  cfg.Auth.SuperAdmin,
			DefaultMode: auth.Mode(cfg.Auth.DefaultMode),
		},
		directoryProvider,
		localProvider,
		st,
		claimsResolver,
		tokens,
	)

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "CaseDesk",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(fiberrecover.New())
	}

	// zerolog access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.Path,
	}))

	// prometheus scrape endpoint
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// init web service
	service := &Service{
		cfg:      cfg,
		App:      app,
		db:       db,
		resolver: resolver,
	}

	service.alive.Store(true)

	// init handlers (they register their own routes)
	initHandler := func(name string, err error) {
		if err != nil {
			log.Fatal().Err(err).Str("handler", name).Msg("failed to init handler")
		}
	}

	initHandler("login", login.Handler.Init(app, cfg, resolver))
	initHandler("session", session.Handler.Init(app, cfg, tokens))
	initHandler("check-handle", checkhandle.Handler.Init(app, cfg, db))
	initHandler("directory-admin", directory.Handler.Init(app, cfg, manager, directoryProvider, tokens))
	initHandler("health", health.Handler.Init(app, cfg, db))

	return service
}
