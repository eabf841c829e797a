// Package stdlogger adapts the global zerolog logger to the printf-style
// logging interfaces third-party libraries expect (gorm's writer interface
// among them).
package stdlogger

import (
	"github.com/rs/zerolog/log"
)

// Adapter forwards printf-style log calls to the global zerolog logger.
type Adapter struct{}

// New creates a new stdlogger adapter.
func New() *Adapter {
	return &Adapter{}
}

// Printf logs at info level. Satisfies gorm's logger.Writer interface.
func (a *Adapter) Printf(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// Debugf logs at debug level.
func (a *Adapter) Debugf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// Infof logs at info level.
func (a *Adapter) Infof(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// Warningf logs at warn level.
func (a *Adapter) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

// Errorf logs at error level.
func (a *Adapter) Errorf(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}
