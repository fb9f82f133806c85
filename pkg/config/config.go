// Package config loads and persists the glim configuration file.
package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration, stored as TOML.
type Config struct {
	// GitlabURL is the API base URL, e.g. "https://gitlab.example.com/api/v4".
	GitlabURL string `toml:"gitlab_url"`
	// GitlabToken is a personal access token with read_api scope.
	GitlabToken string `toml:"gitlab_token"`
	// SearchFilter narrows the project listing server-side. Nil means no filter.
	SearchFilter *string `toml:"search_filter,omitempty"`
	// LogLevel is one of Off, Error, Warn, Info, Debug, Trace. "Off"
	// disables file logging entirely.
	LogLevel string `toml:"log_level,omitempty"`
}

// DefaultPath returns the conventional config file location,
// e.g. ~/.config/glim/glim.toml on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "glim", "glim.toml"), nil
}

// Load reads configuration from path. A missing file is not an error;
// the caller decides whether to enter the bootstrap flow.
func Load(path string) (*Config, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	return cfg, err == nil, err
}

// LoadFromReader decodes TOML configuration from r.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to path atomically, creating parent
// directories as needed. The file is written to a temp file in the same
// directory and renamed into place.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".glim-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Validate checks the syntactic shape of the configuration. A live
// connection check is a separate concern.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GitlabURL) == "" {
		return errors.New("gitlab_url is required")
	}
	if !strings.HasPrefix(c.GitlabURL, "http://") && !strings.HasPrefix(c.GitlabURL, "https://") {
		return errors.New("gitlab_url must start with http:// or https://")
	}
	if strings.TrimSpace(c.GitlabToken) == "" {
		return errors.New("gitlab_token is required")
	}
	if c.LogLevel != "" && !validLogLevel(c.LogLevel) {
		return errors.New("log_level must be one of Off, Error, Warn, Info, Debug, Trace")
	}
	return nil
}

// Filter returns the search filter, or the empty string when unset.
func (c *Config) Filter() string {
	if c.SearchFilter == nil {
		return ""
	}
	return *c.SearchFilter
}

// SetFilter stores text as the search filter; an empty string clears it.
func (c *Config) SetFilter(text string) {
	if text == "" {
		c.SearchFilter = nil
		return
	}
	s := text
	c.SearchFilter = &s
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "off", "error", "warn", "info", "debug", "trace":
		return true
	}
	return false
}
