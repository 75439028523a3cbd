package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Quote    QuoteConfig    `mapstructure:"quote"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// Quote sources selectable via quote.source.
const (
	SourceLive      = "live"
	SourceFixture   = "fixture"
	SourceWarehouse = "warehouse"
)

type QuoteConfig struct {
	Source      string        `mapstructure:"source"` // "live", "fixture" or "warehouse"
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FixturePath string        `mapstructure:"fixture_path"`
}

type VisionConfig struct {
	BaseURL string        `mapstructure:"base_url"` // OpenAI-compatible endpoint, e.g. Ollama's /v1
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It loads .env (if present), reads config.yaml and overrides with environment variables.
func Load() (*Config, error) {
	dir := os.Getenv("STOCKCHART_CONFIG_DIR")
	if dir == "" {
		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			dir = filepath.Join(pwd, "../../config")
		} else {
			dir = filepath.Join(filepath.Dir(ex), "../config")
		}
	}
	return LoadFrom(dir)
}

// LoadFrom loads configuration from config.yaml inside dir. A missing file is not
// an error: defaults and environment variables still apply.
func LoadFrom(dir string) (*Config, error) {
	// .env holds the API token during development
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	// Support environment variables with dot notation (e.g., QUOTE_API_KEY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider convention wins over the generic key
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		v.Set("quote.api_key", key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Log.Environment == "prod" && cfg.Quote.APIKey == "" {
		cfg.Quote.APIKey = getParameterStoreValue("STOCKCHART_ALPHAVANTAGE_API_KEY", true)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quote.source", SourceLive)
	v.SetDefault("quote.base_url", "https://www.alphavantage.co")
	v.SetDefault("quote.timeout", 30*time.Second)
	v.SetDefault("quote.fixture_path", "test_data.csv")
	// AutomaticEnv only sees keys viper already knows about
	v.SetDefault("quote.api_key", "")

	v.SetDefault("vision.base_url", "http://localhost:11434/v1")
	v.SetDefault("vision.model", "llama3.2-vision")
	v.SetDefault("vision.api_key", "ollama")
	v.SetDefault("vision.timeout", 5*time.Minute)

	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 6*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "stockchart")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
}

// Validate checks values that would otherwise fail deep inside a request.
// A missing API key is not an error; the provider request is sent without one.
func (c *Config) Validate() error {
	switch c.Quote.Source {
	case SourceLive, SourceFixture, SourceWarehouse:
	default:
		return fmt.Errorf("quote.source must be one of %q, %q, %q: got %q",
			SourceLive, SourceFixture, SourceWarehouse, c.Quote.Source)
	}
	if c.Quote.Source == SourceFixture && c.Quote.FixturePath == "" {
		return fmt.Errorf("quote.fixture_path is required for the fixture source")
	}
	if c.Vision.Model == "" {
		return fmt.Errorf("vision.model is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
