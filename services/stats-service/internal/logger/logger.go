package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	appCtx "github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/context"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. format is "json" or "console".
func Init(level, format string) {
	InitWithWriter(os.Stdout, level, format)
}

func InitWithWriter(w io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.TrimSpace(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = w
	if strings.TrimSpace(format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zlog.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", "stats-service").
		Logger().
		Level(lvl)
}

func WithCtx(ctx context.Context) *zerolog.Logger {
	l := zlog.Logger
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return &l
}
