package fleetassist

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Desarso/fleetassist/models/gemini"
	"github.com/Desarso/fleetassist/sessions"
	"github.com/Desarso/fleetassist/stores"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the environment driven configuration of the relay. It is
// built once at startup and injected into the server; nothing reads the
// environment after Load returns.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSAllowOrigin string        `env:"CORS_ALLOW_ORIGIN"`

	GeminiAPIKey          string  `env:"GEMINI_API_KEY"`
	GeminiModel           string  `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiTemperature     float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	GeminiMaxOutputTokens int32   `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"1024"`

	StoreType    string `env:"STORE_TYPE" envDefault:"sqlite"`
	StoreDSN     string `env:"STORE_DSN" envDefault:"fleetassist.sqlite"`
	SeedDemoData bool   `env:"SEED_DEMO_DATA" envDefault:"false"`

	ContextFailurePolicy string `env:"CONTEXT_FAILURE_POLICY" envDefault:"degrade"`
	ContextMaxRows       int    `env:"CONTEXT_MAX_ROWS" envDefault:"5"`
	ContextMaxChars      int    `env:"CONTEXT_MAX_CHARS" envDefault:"2000"`

	TurnRetention     time.Duration `env:"TURN_RETENTION" envDefault:"720h"`
	RetentionSchedule string        `env:"RETENTION_SCHEDULE" envDefault:"@hourly"`
}

// Load reads a .env file when one exists, then parses the process
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromMap parses configuration from vars instead of the process
// environment.
func LoadFromMap(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns the defaults with no credential, backed by an in-memory
// SQLite database.
func NewConfig() *Config {
	cfg, err := LoadFromMap(map[string]string{"STORE_DSN": "file::memory:?cache=shared"})
	if err != nil {
		panic("default config is invalid: " + err.Error())
	}
	return cfg
}

// WithGeminiAPIKey sets the generative backend credential
func (c *Config) WithGeminiAPIKey(key string) *Config {
	c.GeminiAPIKey = key
	return c
}

// WithContextFailurePolicy sets what happens when the context lookup fails
func (c *Config) WithContextFailurePolicy(policy sessions.ContextPolicy) *Config {
	c.ContextFailurePolicy = string(policy)
	return c
}

// WithStore sets the store type and DSN
func (c *Config) WithStore(storeType, dsn string) *Config {
	c.StoreType = storeType
	c.StoreDSN = dsn
	return c
}

// Validate checks enumerated and bounded fields.
func (c *Config) Validate() error {
	switch c.StoreType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("STORE_TYPE must be sqlite or postgres, got %q", c.StoreType)
	}
	switch sessions.ContextPolicy(c.ContextFailurePolicy) {
	case sessions.ContextDegrade, sessions.ContextFail:
	default:
		return fmt.Errorf("CONTEXT_FAILURE_POLICY must be degrade or fail, got %q", c.ContextFailurePolicy)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.TurnRetention < 0 {
		return fmt.Errorf("TURN_RETENTION must not be negative")
	}
	return nil
}

// HasCredential reports whether the generative backend credential is set.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the relay runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ContextPolicy returns the context stage failure policy.
func (c *Config) ContextPolicy() sessions.ContextPolicy {
	return sessions.ContextPolicy(c.ContextFailurePolicy)
}

// StoreConfig returns the store settings for stores.NewStore.
func (c *Config) StoreConfig() *stores.StoreConfig {
	return stores.NewStoreConfig(c.StoreType, c.StoreDSN)
}

// GeminiConfig returns the generation settings for gemini.New.
func (c *Config) GeminiConfig() gemini.Config {
	return gemini.Config{
		APIKey:          c.GeminiAPIKey,
		Model:           c.GeminiModel,
		Temperature:     c.GeminiTemperature,
		MaxOutputTokens: c.GeminiMaxOutputTokens,
	}
}
