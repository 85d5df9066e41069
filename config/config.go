package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"jurissearch-backend/models"
)

// ServerConfig is the [server] section
type ServerConfig struct {
	Port    string `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

// LLMConfig selects and authenticates the model provider
type LLMConfig struct {
	Provider            string  `toml:"provider"`
	Model               string  `toml:"model"`
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	ResearchTemperature float32 `toml:"research_temperature"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// StoreConfig selects the session store: memory, sqlite or postgres
type StoreConfig struct {
	Driver      string `toml:"driver"`
	DatabaseURL string `toml:"database_url"`
	SQLitePath  string `toml:"sqlite_path"`
}

// StorageConfig selects where briefings are archived: local or s3
type StorageConfig struct {
	Type         string `toml:"type"`
	LocalPath    string `toml:"local_path"`
	S3Bucket     string `toml:"s3_bucket"`
	S3Region     string `toml:"s3_region"`
	AWSAccessKey string `toml:"aws_access_key"`
	AWSSecretKey string `toml:"aws_secret_key"`
}

// LogConfig is the [log] section
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// ResearchConfig holds research behaviour switches
type ResearchConfig struct {
	DemoFixtures bool `toml:"demo_fixtures"`
}

// FixtureConfig is a canned response served for topics containing Topic
type FixtureConfig struct {
	Topic string             `toml:"topic"`
	Won   []models.CaseStudy `toml:"won"`
	Lost  []models.CaseStudy `toml:"lost"`
}

// Config is the full application configuration
type Config struct {
	Server   ServerConfig    `toml:"server"`
	LLM      LLMConfig       `toml:"llm"`
	Store    StoreConfig     `toml:"store"`
	Storage  StorageConfig   `toml:"storage"`
	Log      LogConfig       `toml:"log"`
	Research ResearchConfig  `toml:"research"`
	Fixtures []FixtureConfig `toml:"fixtures"`
}

// Default returns the configuration used when no file or environment overrides are present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
		},
		LLM: LLMConfig{
			Provider:            "gemini",
			Model:               "gemini-2.0-flash",
			ResearchTemperature: 0.2,
			TimeoutSeconds:      60,
		},
		Store: StoreConfig{
			Driver:     "memory",
			SQLitePath: "./jurissearch.db",
		},
		Storage: StorageConfig{
			Type:      "local",
			LocalPath: "./storage/briefings",
			S3Region:  "us-east-1",
		},
		Log: LogConfig{
			Level: "info",
		},
		Research: ResearchConfig{
			DemoFixtures: true,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file at path,
// a .env file and the process environment, in that order of precedence.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.GinMode, "GIN_MODE")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	// Later keys override earlier ones so GEMINI_API_KEY takes precedence
	for _, key := range []string{"LLM_API_KEY", "API_KEY", "GEMINI_API_KEY"} {
		setString(&cfg.LLM.APIKey, key)
	}

	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setString(&cfg.Store.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Store.SQLitePath, "SQLITE_PATH")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.LocalPath, "STORAGE_LOCAL_PATH")
	setString(&cfg.Storage.S3Bucket, "AWS_S3_BUCKET")
	setString(&cfg.Storage.S3Region, "AWS_REGION")
	setString(&cfg.Storage.AWSAccessKey, "AWS_ACCESS_KEY_ID")
	setString(&cfg.Storage.AWSSecretKey, "AWS_SECRET_ACCESS_KEY")

	setString(&cfg.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("DEMO_FIXTURES"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Research.DemoFixtures = enabled
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("store.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}

	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	if c.LLM.ResearchTemperature < 0 || c.LLM.ResearchTemperature > 2 {
		return fmt.Errorf("llm.research_temperature out of range: %v", c.LLM.ResearchTemperature)
	}
	for i, f := range c.Fixtures {
		if strings.TrimSpace(f.Topic) == "" {
			return fmt.Errorf("fixtures[%d]: topic is required", i)
		}
	}
	return nil
}

// Redacted returns a copy that is safe to log
func (c *Config) Redacted() Config {
	r := *c
	if r.LLM.APIKey != "" {
		r.LLM.APIKey = "REDACTED"
	}
	if r.Storage.AWSSecretKey != "" {
		r.Storage.AWSSecretKey = "REDACTED"
	}
	if r.Store.DatabaseURL != "" {
		r.Store.DatabaseURL = "REDACTED"
	}
	return r
}
