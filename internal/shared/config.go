package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Cache       CacheConfig       `toml:"cache"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// APIKey is a pre-issued bearer token; when set it takes precedence over the client credentials flow.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
	APIKey       string   `toml:"api_key"`
}

// APIConfig contains request engine settings.
type APIConfig struct {
	BaseURL           string   `toml:"base_url"`
	AccountsURL       string   `toml:"accounts_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// CacheConfig selects and configures the token cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // memory, sqlite or redis
	Namespace     string `toml:"namespace"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `toml:"max_open_conns"`
	MaxIdleConns int `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Duration is a [time.Duration] that decodes from TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process environment.
//
// Missing files are ignored; variables already set in the environment are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials with SPOTIFY_* environment variables when they are set.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":  &c.Credentials.Spotify.RedirectURI,
		"SPOTIFY_API_KEY":       &c.Credentials.Spotify.APIKey,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.Backend == "sqlite" && c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is required for the sqlite backend", ErrInvalidConfig)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("%w: cache.redis_addr is required for the redis backend", ErrInvalidConfig)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: api.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// HasClientCredentials reports whether both client id and secret are configured.
func (s SpotifyConfig) HasClientCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}
