// Package server runs the goeq tool endpoint over HTTP or MCP stdio.
package server

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds server configuration. Environment variables set the defaults
// and flags override them.
type Config struct {
	Addr         string `env:"GOEQ_ADDR"           envDefault:":8080"   validate:"required"`
	Transport    string `env:"GOEQ_TRANSPORT"      envDefault:"http"    validate:"oneof=http stdio"`
	LogLevel     string `env:"GOEQ_LOG_LEVEL"      envDefault:"info"    validate:"oneof=debug info warn error"`
	MaxBodyBytes int64  `env:"GOEQ_MAX_BODY_BYTES" envDefault:"1048576" validate:"gt=0"`
	MaxRangeLen  int    `env:"GOEQ_MAX_RANGE_LEN"  envDefault:"4096"    validate:"gt=0"`
}

var validate = validator.New()

// ParseConfig reads environ (the process environment when nil), then args.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport: http or stdio")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "maximum /tool request body size")
	fs.IntVar(&cfg.MaxRangeLen, "max-range-len", cfg.MaxRangeLen, "maximum variables one range tool call may select")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
