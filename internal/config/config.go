// Package config loads server configuration from an optional TOML file with
// environment-variable overrides. A .env file in the working directory is
// honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// OAuthApp holds one provider's OAuth application credentials.
type OAuthApp struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// SMTP holds server-level SMTP defaults, used when an account has no
// per-account SMTP settings.
type SMTP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Sender   string `toml:"sender"`
}

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `toml:"listen_addr"`
	// DataDir is where the SQLite database lives.
	DataDir string `toml:"data_dir"`
	// BaseURL is the externally visible URL, used to build OAuth
	// redirect URIs when a provider section leaves redirect_uri empty.
	BaseURL string `toml:"base_url"`
	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Google    OAuthApp `toml:"google"`
	Microsoft OAuthApp `toml:"microsoft"`
	Zoom      OAuthApp `toml:"zoom"`
	SMTP      SMTP     `toml:"smtp"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		BaseURL:    "http://localhost:8080",
	}
}

// Load reads configuration from path (optional), then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	// Best effort; absence is the normal case outside development.
	if err := godotenv.Load(); err == nil {
		logger.Debug("config: loaded .env file")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
			logger.Debug("config: loaded %s", path)
		case os.IsNotExist(err):
			logger.Debug("config: %s not found, using defaults", path)
		default:
			return cfg, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.fillRedirects()
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "HIREFLOW_LISTEN_ADDR")
	setString(&c.DataDir, "HIREFLOW_DATA_DIR")
	setString(&c.BaseURL, "HIREFLOW_BASE_URL")

	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.RedirectURI, "GOOGLE_REDIRECT_URI")

	setString(&c.Microsoft.ClientID, "MICROSOFT_CLIENT_ID")
	setString(&c.Microsoft.ClientSecret, "MICROSOFT_CLIENT_SECRET")
	setString(&c.Microsoft.RedirectURI, "MICROSOFT_REDIRECT_URI")

	setString(&c.Zoom.ClientID, "ZOOM_CLIENT_ID")
	setString(&c.Zoom.ClientSecret, "ZOOM_CLIENT_SECRET")
	setString(&c.Zoom.RedirectURI, "ZOOM_REDIRECT_URI")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.Sender, "SMTP_SENDER")

	if v := os.Getenv("HIREFLOW_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
}

// fillRedirects derives redirect URIs from BaseURL for providers that left
// them empty.
func (c *Config) fillRedirects() {
	if c.Google.RedirectURI == "" {
		c.Google.RedirectURI = c.BaseURL + "/auth/google/callback"
	}
	if c.Microsoft.RedirectURI == "" {
		c.Microsoft.RedirectURI = c.BaseURL + "/auth/microsoft/callback"
	}
	if c.Zoom.RedirectURI == "" {
		c.Zoom.RedirectURI = c.BaseURL + "/auth/zoom/callback"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
