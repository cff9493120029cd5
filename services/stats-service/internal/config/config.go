package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	DatabaseURL string

	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RateLimitConfig is a per-ip fixed window.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Config{
		AppEnv:      env.str("APP_ENV", "dev"),
		DatabaseURL: env.str("DATABASE_URL", ""),
		HTTP: HTTPConfig{
			Addr:            env.str("HTTP_ADDR", ":9090"),
			ReadTimeout:     env.duration("HTTP_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    env.duration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     env.duration("HTTP_IDLE_TIMEOUT", time.Minute),
			ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: env.boolean("RL_ENABLED", true),
			Limit:   env.integer("RL_IP_LIMIT", 1000),
			Window:  env.duration("RL_IP_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "console"),
		},
	}

	if cfg.DatabaseURL == "" {
		env.errs = append(env.errs, errors.New("missing DATABASE_URL"))
	}
	if rl := cfg.RateLimit; rl.Enabled && (rl.Limit <= 0 || rl.Window <= 0) {
		env.errs = append(env.errs, errors.New("invalid rate limit: RL_IP_LIMIT and RL_IP_WINDOW must be > 0"))
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envReader reads trimmed env values and collects every parse failure so
// Load can report them together.
type envReader struct {
	errs []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return i
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (e *envReader) boolean(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}
