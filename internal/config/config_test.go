package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", c.APIURL, DefaultAPIURL)
	}
	if c.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", c.Timeout())
	}
	if !strings.HasSuffix(c.TokenFile, filepath.Join(".findy", "token")) {
		t.Errorf("TokenFile = %q", c.TokenFile)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"malformed url", func(c *Config) { c.APIURL = "not a url" }, "APIURL must be an http(s) URL"},
		{"non-http url", func(c *Config) { c.APIURL = "ftp://example.com" }, "APIURL must be an http(s) URL"},
		{"bad web url", func(c *Config) { c.WebURL = "::" }, "WebURL"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel must be one of"},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }, "RequestTimeout"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = "-1s" }, "RequestTimeout"},
		{"zero timeout ok", func(c *Config) { c.RequestTimeout = "0" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findy.yaml")
	content := "api_url: http://api.example.com/\nlog_level: debug\nrequest_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINDY_LOG_LEVEL", "warn")

	v := viper.New()
	InitViper(v, path)
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.APIURL != "http://api.example.com" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override warn", cfg.LogLevel)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.WebURL != DefaultWebURL {
		t.Errorf("WebURL = %q, want default", cfg.WebURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("FINDY_API_URL", "nope")
	v := viper.New()
	InitViper(v, filepath.Join(t.TempDir(), "missing.yaml"))
	// An explicit file that does not exist is a read error, not "not found".
	if _, err := LoadConfig(v); err == nil {
		t.Fatal("LoadConfig() error = nil")
	}

	v = viper.New()
	v.SetConfigName("findy-test-none")
	v.AddConfigPath(t.TempDir())
	v.SetEnvPrefix("FINDY")
	_ = v.BindEnv("api_url")
	_, err := LoadConfig(v)
	if err == nil || !strings.Contains(err.Error(), "APIURL") {
		t.Errorf("LoadConfig() error = %v, want APIURL validation failure", err)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)
	if err := WriteDefault(path, Default(), false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if err := WriteDefault(path, Default(), false); !errors.Is(err, ErrExists) {
		t.Errorf("second WriteDefault() error = %v, want ErrExists", err)
	}
	if err := WriteDefault(path, Default(), true); err != nil {
		t.Errorf("forced WriteDefault() error: %v", err)
	}

	v := viper.New()
	InitViper(v, path)
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() of written file error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("round trip = %+v", cfg)
	}
}
