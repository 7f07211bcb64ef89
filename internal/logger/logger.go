package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(zerolog.DebugLevel)
}

// WithLevel re-levels a logger from a config string, falling back to info
// when the string does not parse.
func WithLevel(logger zerolog.Logger, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		logger.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	return logger.Level(parsed)
}

var Module = fx.Provide(New)
