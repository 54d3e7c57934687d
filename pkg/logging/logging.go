package logging

import (
	"errors"
	"log/slog"
	"os"
)

// Name is the name of the application that the logger is for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the name of the application.
	name string
}

// NewConfig creates a new logging configuration.
func NewConfig(name Name) *Config {
	return &Config{
		name: string(name),
	}
}

// CommonLogger creates the common logger for the application. The logger is
// also set as the default logger for the slog package.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c.name == "" {
		return nil, errors.New("no application name provided")
	}

	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	l = l.With(slog.String(KeyAppName, c.name))

	slog.SetDefault(l)
	return l, nil
}
