// Package logger configures the process-wide zerolog logger
package logger

import (
	"io"
	"os"

	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the level and output format of the global logger
type Config struct {
	Debug        bool
	PrettyFormat bool
	Output       io.Writer
}

// DefaultConfig logs JSON lines at info level to stderr
var DefaultConfig = Config{}

// ConfigFrom reads LOG_DEBUG and LOG_PRETTY from the application config
func ConfigFrom(cfg *utils.Config) Config {
	return Config{
		Debug:        cfg.GetBool("LOG_DEBUG"),
		PrettyFormat: cfg.GetBool("LOG_PRETTY"),
	}
}

// Init replaces the global zerolog logger using the first provided config,
// falling back to DefaultConfig
func Init(opts ...Config) {
	conf := DefaultConfig
	if len(opts) > 0 {
		conf = opts[0]
	}

	out := conf.Output
	if out == nil {
		out = os.Stderr
	}

	if conf.PrettyFormat {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	if conf.Debug {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	log.Logger = log.Logger.With().Caller().Logger()
}
