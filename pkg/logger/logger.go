// backend-go/pkg/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Console output on stderr; the forecast CLI keeps stdout for
	// report listings.
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	Log = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the log level. It accepts zerolog level names as well
// as the server modes from SERVER_MODE.
func SetLevel(levelStr string) {
	level := levelFor(levelStr)
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}

func levelFor(levelStr string) zerolog.Level {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel
	case "release", "test":
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}
