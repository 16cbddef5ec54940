// Package config loads findy settings from findy.yaml, FINDY_* environment
// variables and command-line overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the complete client configuration.
type Config struct {
	// APIURL is the root of the Findy REST API.
	APIURL string `yaml:"api_url" mapstructure:"api_url" validate:"required,http_url"`

	// WebURL is the web front end, used to open job pages in a browser.
	WebURL string `yaml:"web_url" mapstructure:"web_url" validate:"omitempty,http_url"`

	// TokenFile holds the bearer token between runs.
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// LogFile receives logs while the terminal UI owns the screen.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// RequestTimeout bounds each API call, as a Go duration. "0" disables it.
	RequestTimeout string `yaml:"request_timeout" mapstructure:"request_timeout" validate:"duration"`
}

const (
	DefaultAPIURL         = "http://localhost:8081"
	DefaultWebURL         = "http://localhost:3000"
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = "30s"
)

// Dir returns ~/.findy, or .findy when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".findy"
	}
	return filepath.Join(home, ".findy")
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.WebURL == "" {
		c.WebURL = DefaultWebURL
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(Dir(), "token")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(Dir(), "findy.log")
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = DefaultRequestTimeout
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.WebURL = strings.TrimRight(c.WebURL, "/")
	c.TokenFile = expandHome(c.TokenFile)
	c.LogFile = expandHome(c.LogFile)
}

// Timeout returns RequestTimeout parsed. Call after Validate.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
