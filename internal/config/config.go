// Package config loads settings for the three commands from the environment.
//
// An optional .env file in the working directory is read first. Variables already
// set in the environment win over the file. Every setting has a default, so the
// commands run with no configuration at all:
//
//	DB_PATH=data/site.db
//	PAGES_PORT=5000  API_PORT=5001  API_RATE_LIMIT=120
//	GITHUB_API_URL=https://api.github.com  GITHUB_TOKEN=  GITHUB_RPS=5
//	SEED_TOTAL=150  CACHE_TTL=500s  LOG_LEVEL=info  LOG_FILE=
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	GitHub   GitHubConfig
	Seed     SeedConfig
	Cache    CacheConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Path string `envconfig:"DB_PATH" default:"data/site.db" validate:"required"`
}

type ServerConfig struct {
	PagesPort    int           `envconfig:"PAGES_PORT" default:"5000" validate:"min=1,max=65535"`
	APIPort      int           `envconfig:"API_PORT" default:"5001" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	// Requests per minute per client IP on the JSON API. 0 disables the limit.
	APIRateLimit int `envconfig:"API_RATE_LIMIT" default:"120" validate:"min=0"`
}

type GitHubConfig struct {
	BaseURL           string        `envconfig:"GITHUB_API_URL" default:"https://api.github.com" validate:"required,url"`
	Token             string        `envconfig:"GITHUB_TOKEN"`
	Timeout           time.Duration `envconfig:"GITHUB_TIMEOUT" default:"20s" validate:"gt=0"`
	RequestsPerSecond float64       `envconfig:"GITHUB_RPS" default:"5" validate:"min=0"`
	MaxPerPage        int           `envconfig:"GITHUB_MAX_PER_PAGE" default:"100" validate:"min=1,max=100"`
}

type SeedConfig struct {
	Total int `envconfig:"SEED_TOTAL" default:"150" validate:"min=1"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"CACHE_TTL" default:"500s" validate:"min=0"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	File  string `envconfig:"LOG_FILE"`
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations. The first failure is reported.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("invalid configuration: %s failed %q (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value())
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// PagesAddr is the listen address of the HTML pages service.
func (c *Config) PagesAddr() string {
	return fmt.Sprintf(":%d", c.Server.PagesPort)
}

// APIAddr is the listen address of the JSON API service.
func (c *Config) APIAddr() string {
	return fmt.Sprintf(":%d", c.Server.APIPort)
}
