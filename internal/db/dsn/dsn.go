// Package dsn provides Data Source Name construction and gorm dialector
// selection for database connections.
package dsn

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/config"
)

// ErrUnknownDriver is returned when the configured database driver is not supported.
var ErrUnknownDriver = errors.New("unknown database driver")

// Create builds the MySQL Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// CreatePostgres builds the Postgres connection string from the configuration.
func CreatePostgres(dbCfg *config.Config) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s %s",
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// Dialector selects the gorm dialector for the configured driver:
// mysql, postgres or sqlite.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.Driver {
	case "mysql":
		return mysql.Open(Create(cfg)), nil
	case "postgres":
		return postgres.Open(CreatePostgres(cfg)), nil
	case "sqlite":
		path := cfg.DB.Path
		if path == "" {
			path = "./casedesk.db"
		}

		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DB.Driver)
	}
}
