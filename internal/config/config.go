// Package config loads process configuration for the Jupyter MCP bridge.
//
// Configuration comes from three layers, lowest precedence first: built-in
// defaults, an optional TOML file, and environment variables. The environment
// variable names match the original deployment contract (NOTEBOOK_PATH,
// SERVER_URL, TOKEN).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jupyter-bridge/jupyter-mcp/internal/errors"
	"github.com/jupyter-bridge/jupyter-mcp/internal/security"
)

// Defaults applied when neither the config file nor the environment provides
// a value.
const (
	DefaultNotebookPath = "notebook.ipynb"
	DefaultServerURL    = "http://localhost:8888"
	DefaultToken        = "MY_TOKEN"

	DefaultMaxWait      = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Config holds the resolved process configuration.
type Config struct {
	// NotebookPath is the server-relative path of the notebook document.
	NotebookPath string

	// ServerURL is the Jupyter server base URL.
	ServerURL string

	// Token is the Jupyter server access token.
	Token string

	// MaxWait bounds how long a code-cell execution is polled for outputs.
	MaxWait time.Duration

	// PollInterval is the sleep between output polls.
	PollInterval time.Duration
}

// fileConfig mirrors the optional TOML config file.
type fileConfig struct {
	NotebookPath string `toml:"notebook_path"`
	ServerURL    string `toml:"server_url"`
	Token        string `toml:"token"`
	MaxWait      string `toml:"max_wait"`
	PollInterval string `toml:"poll_interval"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		NotebookPath: DefaultNotebookPath,
		ServerURL:    DefaultServerURL,
		Token:        DefaultToken,
		MaxWait:      DefaultMaxWait,
		PollInterval: DefaultPollInterval,
	}
}

// Load resolves the configuration from defaults, the optional TOML file at
// filePath (empty string skips the file layer), and the environment.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := cfg.applyFile(filePath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays values from a TOML config file. Only keys present in
// the file override the current values.
func (c *Config) applyFile(filePath string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(filePath, &raw)
	if err != nil {
		return errors.Configuration("load config file", err)
	}

	if meta.IsDefined("notebook_path") {
		c.NotebookPath = strings.TrimSpace(raw.NotebookPath)
	}
	if meta.IsDefined("server_url") {
		c.ServerURL = strings.TrimSpace(raw.ServerURL)
	}
	if meta.IsDefined("token") {
		c.Token = raw.Token
	}
	if meta.IsDefined("max_wait") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.MaxWait))
		if err != nil {
			return errors.Configuration("parse max_wait", err)
		}
		c.MaxWait = d
	}
	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return errors.Configuration("parse poll_interval", err)
		}
		c.PollInterval = d
	}

	return nil
}

// applyEnv overlays values from the environment. Set variables always win
// over file and default values.
func (c *Config) applyEnv() {
	if v := os.Getenv("NOTEBOOK_PATH"); v != "" {
		c.NotebookPath = v
	}
	if v := os.Getenv("SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("TOKEN"); v != "" {
		c.Token = v
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	validator := security.NewDefaultValidator()

	if err := validator.ValidateServerURL(c.ServerURL); err != nil {
		return err
	}
	if err := validator.ValidateNotebookPath(c.NotebookPath); err != nil {
		return err
	}
	if c.MaxWait <= 0 {
		return errors.Configuration("max_wait must be positive", nil)
	}
	if c.PollInterval <= 0 {
		return errors.Configuration("poll_interval must be positive", nil)
	}

	return nil
}
