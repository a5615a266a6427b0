package server

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownSeconds bounds graceful shutdown.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// Validate checks that the port is a usable TCP port.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Port)
	}
	return nil
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
