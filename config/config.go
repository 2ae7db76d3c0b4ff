// Package config loads and validates gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/migue1angel/event-manager-gateway/errors"
)

// Environment variable names consumed at boot
const (
	EnvPort           = "PORT"
	EnvNATSServers    = "NAT_SERVERS"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMetricsPort    = "METRICS_PORT"
)

// Defaults applied when optional variables are unset
const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultMetricsPort    = 9090
)

// Config represents the complete gateway configuration
type Config struct {
	// Port is the HTTP listen port for the gateway
	Port int

	// NATSServers lists broker endpoint URLs
	NATSServers []string

	// RequestTimeout bounds every broker request/reply exchange.
	// Uniform across all actions; not configurable per call.
	RequestTimeout time.Duration

	// MetricsPort is the listen port for the Prometheus metrics server
	MetricsPort int
}

// Load reads configuration from the environment and validates it.
// Boot fails fast on absent or malformed required values.
func Load() (*Config, error) {
	cfg := &Config{
		RequestTimeout: DefaultRequestTimeout,
		MetricsPort:    DefaultMetricsPort,
	}

	portStr, ok := os.LookupEnv(EnvPort)
	if !ok || portStr == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Config", "Load",
			fmt.Sprintf("%s is required", EnvPort))
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load",
			fmt.Sprintf("parse %s", EnvPort))
	}
	cfg.Port = port

	serversStr, ok := os.LookupEnv(EnvNATSServers)
	if !ok || serversStr == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Config", "Load",
			fmt.Sprintf("%s is required", EnvNATSServers))
	}
	cfg.NATSServers = splitServers(serversStr)

	if timeoutStr := os.Getenv(EnvRequestTimeout); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load",
				fmt.Sprintf("parse %s", EnvRequestTimeout))
		}
		cfg.RequestTimeout = timeout
	}

	if metricsStr := os.Getenv(EnvMetricsPort); metricsStr != "" {
		metricsPort, err := strconv.Atoi(metricsStr)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load",
				fmt.Sprintf("parse %s", EnvMetricsPort))
		}
		cfg.MetricsPort = metricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is complete and well-formed
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port))
	}

	if len(c.NATSServers) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"at least one NATS server is required")
	}
	for i, server := range c.NATSServers {
		if server == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("empty NATS server at index %d", i))
		}
	}

	if c.RequestTimeout < 100*time.Millisecond || c.RequestTimeout > 30*time.Second {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"request timeout must be between 100ms and 30s")
	}

	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics port must be between 1 and 65535, got %d", c.MetricsPort))
	}

	if c.MetricsPort == c.Port {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"metrics port must differ from the gateway port")
	}

	return nil
}

// NATSURL returns the broker endpoints joined for nats.Connect
func (c *Config) NATSURL() string {
	return strings.Join(c.NATSServers, ",")
}

// splitServers splits a comma-separated endpoint list, trimming whitespace
// and dropping empty entries from trailing commas.
func splitServers(raw string) []string {
	parts := strings.Split(raw, ",")
	servers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			servers = append(servers, trimmed)
		}
	}
	return servers
}
