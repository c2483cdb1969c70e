package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pable/tkstats/internal/roster"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Renders  RenderConfig   `yaml:"renders"`
	LogLevel string         `yaml:"log_level"`
	Roster   RosterConfig   `yaml:"roster"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	HTTPPort        int           `yaml:"http_port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RenderConfig lists where character images are looked up, in priority
// order, and where generated placeholders are written.
type RenderConfig struct {
	Dirs           []string `yaml:"dirs"`
	PlaceholderDir string   `yaml:"placeholder_dir"`
}

// RosterConfig overrides the built-in character catalog. Empty lists fall
// back to the Tekken 7 defaults.
type RosterConfig struct {
	Characters []string `yaml:"characters"`
	Ranks      []string `yaml:"ranks"`
	Regions    []string `yaml:"regions"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file, then overlays TKSTATS_*
// environment variables (a .env file in the working directory is honoured).
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(userHome(), ".tkstats", "matches.db")
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 5000
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Renders.Dirs) == 0 {
		c.Renders.Dirs = []string{
			filepath.Join("static", "renders"),
			filepath.Join("static", "renders", "tekken7"),
		}
	}
	if c.Renders.PlaceholderDir == "" {
		c.Renders.PlaceholderDir = c.Renders.Dirs[0]
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// applyEnv overlays TKSTATS_* variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TKSTATS_DB"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("TKSTATS_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := getenv("TKSTATS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("TKSTATS_PORT: invalid port %q", v)
		}
		c.Server.HTTPPort = port
	}
	if v := getenv("TKSTATS_CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := getenv("TKSTATS_RENDER_DIRS"); v != "" {
		c.Renders.Dirs = splitList(v)
	}
	if v := getenv("TKSTATS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Addr is the host:port the API server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.ListenAddr, c.Server.HTTPPort)
}

// Catalog builds the character catalog, using the built-in Tekken 7 roster
// unless the config supplies its own characters.
func (c *Config) Catalog() (*roster.Catalog, error) {
	if len(c.Roster.Characters) == 0 {
		return roster.Default(), nil
	}
	builtin := roster.Default()
	ranks := c.Roster.Ranks
	if len(ranks) == 0 {
		ranks = builtin.Ranks()
	}
	regions := c.Roster.Regions
	if len(regions) == 0 {
		regions = builtin.Regions()
	}
	cat, err := roster.New(c.Roster.Characters, ranks, regions)
	if err != nil {
		return nil, fmt.Errorf("roster config: %w", err)
	}
	return cat, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
