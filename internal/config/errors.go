package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrTokenSecretEmpty error if no session token signing secret was configured.
	ErrTokenSecretEmpty = errors.New("toml config auth.tokensecret can not be empty")

	// ErrTokenSecretDefault error if the signing secret is still the known
	// legacy fallback value. Refusing to start beats silently issuing
	// forgeable tokens.
	ErrTokenSecretDefault = errors.New("toml config auth.tokensecret is the well-known default and must be changed")

	// ErrUnknownDefaultMode error if auth.defaultmode names an unknown strategy.
	ErrUnknownDefaultMode = errors.New("toml config auth.defaultmode must be local, domain or hybrid")
)
