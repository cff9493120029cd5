package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Logger is the process-wide logger; it discards everything until Init runs.
var Logger = zerolog.Nop()

type Options struct {
	Level  string // zerolog level name, default info
	Format string // "json" or "console", default console
	Output io.Writer
}

func Init(opts Options) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if strings.TrimSpace(opts.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: opts.Output, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	zlog.Logger = Logger
}

// WithCtx returns the global logger enriched with the request id, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return &l
}
