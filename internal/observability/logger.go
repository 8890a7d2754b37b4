package observability

import (
	"sync"

	"github.com/danmuck/pcodec/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var initLoggerOnce sync.Once

// InitLogger configures the runtime logging profile and tags the global
// logger with the binary name. Later calls return the logger unchanged.
func InitLogger(app string) zerolog.Logger {
	initLoggerOnce.Do(func() {
		logging.ConfigureRuntime()
		log.Logger = log.Logger.With().Str("app", app).Logger()
	})
	return log.Logger
}
