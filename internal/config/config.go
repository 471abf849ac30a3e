package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CSVVIEW_WEB_PORT.
const EnvPrefix = "CSVVIEW"

// Keys shared by flags, environment variables and config files.
const (
	KeyWebPort       = "web-port"
	KeyLogLevel      = "log-level"
	KeyLogFile       = "log-file"
	KeyMaxLogs       = "max-logs"
	KeyUserAgent     = "user-agent"
	KeyAdminUsername = "admin-username"
	KeyAdminPassword = "admin-password"
)

// Config holds all configuration for csvview.
type Config struct {
	// Web UI
	WebPort string

	// Web UI login; disabled when AdminPassword is empty
	AdminUsername string
	AdminPassword string

	// Fetching
	UserAgent string

	// Logging
	LogLevel string // DEBUG, INFO, WARN, ERROR
	LogFile  string // terminal mode only; empty discards logs
	MaxLogs  int    // size of the in-memory log ring
}

// AuthEnabled reports whether the web UI requires a login.
func (c *Config) AuthEnabled() bool {
	return c.AdminPassword != ""
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyWebPort, "8080")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyMaxLogs, 500)
	v.SetDefault(KeyUserAgent, "csvview")
	v.SetDefault(KeyAdminUsername, "admin")
	v.SetDefault(KeyAdminPassword, "")
	return v
}

// Load reads configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	port := v.GetString(KeyWebPort)
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return nil, errors.Errorf("%s must be a port number, got %q", KeyWebPort, port)
	}

	maxLogs := v.GetInt(KeyMaxLogs)
	if maxLogs <= 0 {
		return nil, errors.Errorf("%s must be > 0, got %d", KeyMaxLogs, maxLogs)
	}

	level := strings.ToUpper(v.GetString(KeyLogLevel))
	switch level {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return nil, errors.Errorf("%s must be one of DEBUG, INFO, WARN, ERROR, got %q", KeyLogLevel, level)
	}

	return &Config{
		WebPort:       port,
		AdminUsername: v.GetString(KeyAdminUsername),
		AdminPassword: v.GetString(KeyAdminPassword),
		UserAgent:     v.GetString(KeyUserAgent),
		LogLevel:      level,
		LogFile:       v.GetString(KeyLogFile),
		MaxLogs:       maxLogs,
	}, nil
}
