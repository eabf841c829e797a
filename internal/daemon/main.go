// Package daemon assembles the application: database, directory settings,
// seeding and the web service.
package daemon

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/db/dsn"
	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/dirconfig"
	"github.com/wysehawk/casedesk/internal/logger/adapter/stdlogger"
	"github.com/wysehawk/casedesk/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := d.cfg.Webserver.Domain
	if addr == "" {
		addr = ":8080"
	}

	return d.webService.Start(addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to select database driver")
	}

	gormLog := gormlogger.New(stdlogger.New(), gormlogger.Config{
		SlowThreshold: 200 * time.Millisecond, //nolint:mnd
		LogLevel:      gormlogger.Warn,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Organization{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	manager, err := dirconfig.NewManager(cfg.Auth.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load directory settings")
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, manager),
	}
}
