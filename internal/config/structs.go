package config

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/wysehawk/casedesk/internal/logger"
)

// Duration wraps time.Duration so config files can carry values like "12h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses duration strings from TOML values.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "failed to parse duration")
	}

	d.Duration = parsed

	return nil
}

// MarshalText writes the duration back in its string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON parses duration strings from the JSON env override.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "failed to parse duration")
	}

	return d.UnmarshalText([]byte(s))
}

// MarshalJSON writes the duration back in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String()) //nolint: wrapcheck
}

// Auth holds the authentication core settings.
type Auth struct {
	// SuperAdmin is the distinguished administrator handle that bypasses
	// all affiliation checks.
	SuperAdmin string
	// DefaultMode is the strategy used when a login request does not name
	// one: local, domain or hybrid.
	DefaultMode string
	// TokenSecret is the symmetric secret session tokens are signed with.
	// It must be set and must not be the legacy fallback value.
	TokenSecret string
	// TokenTTL bounds session token validity. Zero issues tokens without
	// an expiry claim.
	TokenTTL Duration
	// SettingsPath is the directory holding the operator-editable
	// directory-connection and OU allow-list documents.
	SettingsPath string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}
