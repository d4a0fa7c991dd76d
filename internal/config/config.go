// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration of the display mirror.
type Config struct {
	// Port is the HTTP/WebSocket listen port.
	Port int `envconfig:"WEB_DISPLAY_PORT" default:"8080" validate:"gte=1,lte=65535"`
	// MaxClients bounds the number of concurrent viewer sessions.
	MaxClients int `envconfig:"WEB_DISPLAY_MAX_CLIENTS" default:"4" validate:"gte=1,lte=64"`
	// Theme selects the initial display theme.
	Theme string `envconfig:"WEB_DISPLAY_THEME" default:"dark" validate:"oneof=dark light"`
	// StatusInterval is the period of the status bar refresh.
	StatusInterval time.Duration `envconfig:"WEB_DISPLAY_STATUS_INTERVAL" default:"30s" validate:"gte=1s"`
	// Demo drives the display with sample mutations so the mirror is
	// observable without the device stack.
	Demo bool `envconfig:"WEB_DISPLAY_DEMO" default:"false"`

	LogLevel string `envconfig:"WEB_DISPLAY_LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"WEB_DISPLAY_LOG_FILE"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
