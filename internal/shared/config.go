package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Connect     ConnectConfig     `toml:"connect"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// APIConfig contains settings for the content platform backend.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// ConnectConfig contains tunables for the OAuth connection flow.
//
// The grace period is deliberately configurable: when the poll watch sees an
// attempt finish before the loopback callback has landed, the controller waits
// this long before the deciding status re-fetch.
type ConnectConfig struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
	GracePeriodMS  int `toml:"grace_period_ms"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PollInterval returns the poll interval as a [time.Duration], defaulting to 500ms.
func (c ConnectConfig) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// GracePeriod returns the post-close grace period, defaulting to 1s.
func (c ConnectConfig) GracePeriod() time.Duration {
	if c.GracePeriodMS <= 0 {
		return time.Second
	}
	return time.Duration(c.GracePeriodMS) * time.Millisecond
}

// Timeout returns the hard ceiling for one connection attempt, defaulting to 5 minutes.
func (c ConnectConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CredentialsConfig contains per-provider app credentials for providers the
// user registers their own OAuth application with.
type CredentialsConfig struct {
	Generic GenericConfig `toml:"generic"`
}

// GenericConfig contains bring-your-own-app OAuth2 settings for the generic provider.
type GenericConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
	AccessToken  string   `toml:"access_token,omitempty"`
	RefreshToken string   `toml:"refresh_token,omitempty"`
	Expiry       string   `toml:"expiry,omitempty"`
}

// Update stores a freshly exchanged token back into the config section.
func (g *GenericConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	g.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		g.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		g.Expiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// Token reconstructs the stored [oauth2.Token], or nil when none is saved.
func (g GenericConfig) Token() *oauth2.Token {
	if g.AccessToken == "" {
		return nil
	}
	token := &oauth2.Token{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
	}
	if g.Expiry != "" {
		if t, err := time.Parse(time.RFC3339, g.Expiry); err == nil {
			token.Expiry = t
		}
	}
	return token
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains loopback callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port address the callback server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReturnURL returns the redirect target handed to the backend when starting a flow.
func (s ServerConfig) ReturnURL() string {
	return fmt.Sprintf("http://%s:%d/callback", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
