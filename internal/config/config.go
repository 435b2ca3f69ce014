package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/drive/v3"
)

// Defaults used when neither a flag nor an environment variable is set.
const (
	DefaultServiceAccountFile = "service-account.json"
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 8055
	DefaultMetricsAddr        = ":9090"

	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// DefaultScopes grants full read/write access to Drive, which also covers
// spreadsheets stored in Drive.
var DefaultScopes = []string{drive.DriveScope}

// Config is the explicit configuration value handed to every component.
type Config struct {
	// ServiceAccountFile is read on every credential acquisition.
	ServiceAccountFile string

	// Scopes requested for every minted token. Fixed for the process lifetime.
	Scopes []string

	Host      string
	Port      int
	Transport string

	// ReadOnly limits the tool surface to operations that never mutate remote state.
	ReadOnly bool

	Debug bool

	MetricsEnabled bool
	MetricsAddr    string
}

// FromEnv returns a Config populated from the environment, falling back to defaults.
func FromEnv() Config {
	return Config{
		ServiceAccountFile: getEnvOrDefault("GOOGLE_SERVICE_ACCOUNT_FILE", DefaultServiceAccountFile),
		Scopes:             ParseScopes(getEnvOrDefault("GOOGLE_DRIVE_SCOPES", strings.Join(DefaultScopes, ","))),
		Host:               getEnvOrDefault("HOST", DefaultHost),
		Port:               getEnvIntOrDefault("PORT", DefaultPort),
		Transport:          getEnvOrDefault("MCP_TRANSPORT", TransportStdio),
		ReadOnly:           getEnvBoolOrDefault("READ_ONLY", false),
		MetricsEnabled:     getEnvBoolOrDefault("METRICS_ENABLED", true),
		MetricsAddr:        getEnvOrDefault("METRICS_ADDR", DefaultMetricsAddr),
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for values that would make the server unusable.
// Scope syntax is checked by the credential provider.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceAccountFile) == "" {
		return fmt.Errorf("service account file path cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", c.Transport)
	}
	return nil
}

// ParseScopes splits a comma or whitespace separated scope list.
// Returns nil if the input holds no scopes.
func ParseScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
