package obs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a tinted text logger for dev/local and JSON otherwise.
// When file is set, output also goes to a size-rotated log file.
func NewLogger(env, file string) *slog.Logger {
	var writer io.Writer = os.Stdout
	if file != "" {
		writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	}
	return newLogger(env, writer)
}

func newLogger(env string, writer io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" || env == "local" {
		return slog.New(tint.NewHandler(writer, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}))
}
