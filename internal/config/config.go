package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Market     MarketConfig     `yaml:"market"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Projection ProjectionConfig `yaml:"projection"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
	Addr string `yaml:"-"` // Combined host:port for convenience
}

// StorageConfig holds snapshot persistence configuration. The extension of
// SnapshotPath selects JSON or SQLite storage.
type StorageConfig struct {
	SnapshotPath  string `yaml:"snapshot_path"`
	EncryptionKey string `yaml:"encryption_key"`
	AutoSave      bool   `yaml:"autosave"`
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// SchedulerConfig holds the periodic refresh configuration
type SchedulerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RefreshSpec string `yaml:"refresh_spec"`
}

// ProjectionConfig holds the parameters of the sale projection
type ProjectionConfig struct {
	TaxRate        float64 `yaml:"tax_rate"`
	TransactionFee float64 `yaml:"transaction_fee"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// defaults returns the configuration used when nothing else is set.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5001",
			Host: "localhost",
		},
		Storage: StorageConfig{
			SnapshotPath: "./data/portfolio.json",
			AutoSave:     true,
		},
		Market: MarketConfig{
			Enabled: true,
			Timeout: 10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			RefreshSpec: "0 30 22 * * 1-5",
		},
		Projection: ProjectionConfig{
			TaxRate:        0.275,
			TransactionFee: 2.50,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}
}

// Load reads configuration from the .env file, an optional YAML file named by
// CONFIG_FILE and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

func applyEnv(c *Config) error {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Storage.SnapshotPath = getEnv("SNAPSHOT_PATH", c.Storage.SnapshotPath)
	c.Storage.EncryptionKey = getEnv("SNAPSHOT_KEY", c.Storage.EncryptionKey)
	c.Scheduler.RefreshSpec = getEnv("REFRESH_SCHEDULE", c.Scheduler.RefreshSpec)

	var err error
	if c.Storage.AutoSave, err = getEnvBool("AUTOSAVE", c.Storage.AutoSave); err != nil {
		return err
	}
	if c.Market.Enabled, err = getEnvBool("MARKET_DATA_ENABLED", c.Market.Enabled); err != nil {
		return err
	}
	if c.Scheduler.Enabled, err = getEnvBool("SCHEDULER_ENABLED", c.Scheduler.Enabled); err != nil {
		return err
	}
	if v := os.Getenv("MARKET_DATA_TIMEOUT"); v != "" {
		if c.Market.Timeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid MARKET_DATA_TIMEOUT %q: %w", v, err)
		}
	}
	if c.Projection.TaxRate, err = getEnvFloat("PROJECTION_TAX_RATE", c.Projection.TaxRate); err != nil {
		return err
	}
	if c.Projection.TransactionFee, err = getEnvFloat("PROJECTION_FEE", c.Projection.TransactionFee); err != nil {
		return err
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Storage.SnapshotPath == "" {
		return fmt.Errorf("storage.snapshot_path is required")
	}
	if c.Projection.TaxRate < 0 || c.Projection.TaxRate > 1 {
		return fmt.Errorf("projection.tax_rate must be between 0 and 1")
	}
	if c.Projection.TransactionFee < 0 {
		return fmt.Errorf("projection.transaction_fee cannot be negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.RefreshSpec == "" {
		return fmt.Errorf("scheduler.refresh_spec is required when the scheduler is enabled")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
