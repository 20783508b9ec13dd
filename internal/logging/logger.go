package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development runs log at debug level.
func New(appEnv string, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stdout
	}
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(output).With().Timestamp().Logger().Level(level)
}
