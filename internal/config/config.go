// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// legacyTokenSecret is the hardcoded fallback secret shipped by earlier
// releases. A config still carrying it is treated as unset.
const legacyTokenSecret = "super_secret_key"

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("CASEDESK_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	// An unset or well-known signing secret is a startup-time fatal error,
	// never something to fall back from silently.
	if c.Auth.TokenSecret == "" {
		return errors.Wrap(ErrTokenSecretEmpty, invalidErrMessage)
	}

	if c.Auth.TokenSecret == legacyTokenSecret {
		return errors.Wrap(ErrTokenSecretDefault, invalidErrMessage)
	}

	if c.Auth.SuperAdmin == "" {
		c.Auth.SuperAdmin = "admin"
	}

	switch c.Auth.DefaultMode {
	case "":
		c.Auth.DefaultMode = "hybrid"
	case "local", "domain", "hybrid":
		// valid
	default:
		return errors.Wrap(ErrUnknownDefaultMode, invalidErrMessage)
	}

	if c.Auth.SettingsPath == "" {
		c.Auth.SettingsPath = "./etc"
	}

	if c.DB.Driver == "" {
		c.DB.Driver = "mysql"
	}

	return nil
}
