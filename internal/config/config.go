// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for databases and backup staging (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	Portfolio   PortfolioConfig
	Regime      RegimeConfig
	Sync        SyncConfig
	Yahoo       YahooConfig
	Backup      BackupConfig
	Maintenance MaintenanceConfig
}

// PortfolioConfig holds the default frontier basket
type PortfolioConfig struct {
	Tickers []string `yaml:"tickers"`
}

// RegimeConfig holds regime classifier defaults
type RegimeConfig struct {
	Index string `yaml:"index"`
	Seed  uint64 `yaml:"seed"`
}

// SyncConfig holds market data sync settings
type SyncConfig struct {
	Symbols      []string `yaml:"symbols"` // Extra symbols synced besides the portfolio and regime index
	HistoryYears int      `yaml:"history_years"`
	Concurrency  int      `yaml:"concurrency"`
	Schedule     string   `yaml:"schedule"`
}

// YahooConfig holds market data client settings
type YahooConfig struct {
	BaseURL       string  `yaml:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// BackupConfig holds S3-compatible backup settings. Backups are disabled
// unless a bucket is configured.
type BackupConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	Schedule        string `yaml:"schedule"`
	RetentionDays   int    `yaml:"retention_days"`
}

// MaintenanceConfig holds database maintenance settings
type MaintenanceConfig struct {
	Schedule string `yaml:"schedule"`
}

// Enabled reports whether remote backups are configured
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load reads configuration from .env, the environment and an optional YAML
// file named by STOCKINTEL_CONFIG, in that order of increasing precedence.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("STOCKINTEL_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  dataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Portfolio: PortfolioConfig{
			Tickers: getEnvAsList("PORTFOLIO_TICKERS", []string{"AAPL", "MSFT", "GOOG", "TSLA"}),
		},
		Regime: RegimeConfig{
			Index: getEnv("REGIME_INDEX", "^NSEI"),
			Seed:  uint64(getEnvAsInt("REGIME_SEED", 42)),
		},
		Sync: SyncConfig{
			Symbols:      getEnvAsList("SYNC_SYMBOLS", nil),
			HistoryYears: getEnvAsInt("HISTORY_YEARS", 5),
			Concurrency:  getEnvAsInt("SYNC_CONCURRENCY", 4),
			Schedule:     getEnv("SYNC_SCHEDULE", "0 30 22 * * MON-FRI"),
		},
		Yahoo: YahooConfig{
			BaseURL:       getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RatePerSecond: getEnvAsFloat("YAHOO_RATE_PER_SEC", 2),
		},
		Backup: BackupConfig{
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvAsBool("BACKUP_S3_PATH_STYLE", false),
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
		Maintenance: MaintenanceConfig{
			Schedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		},
	}

	if path := getEnv("STOCKINTEL_CONFIG", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// fileConfig is the YAML overlay. Zero values leave the loaded setting alone.
type fileConfig struct {
	Portfolio   PortfolioConfig   `yaml:"portfolio"`
	Regime      RegimeConfig      `yaml:"regime"`
	Sync        SyncConfig        `yaml:"sync"`
	Yahoo       YahooConfig       `yaml:"yahoo"`
	Backup      BackupConfig      `yaml:"backup"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	overlay(&c.Portfolio.Tickers, file.Portfolio.Tickers)

	overlay(&c.Regime.Index, file.Regime.Index)
	overlay(&c.Regime.Seed, file.Regime.Seed)

	overlay(&c.Sync.Symbols, file.Sync.Symbols)
	overlay(&c.Sync.HistoryYears, file.Sync.HistoryYears)
	overlay(&c.Sync.Concurrency, file.Sync.Concurrency)
	overlay(&c.Sync.Schedule, file.Sync.Schedule)

	overlay(&c.Yahoo.BaseURL, file.Yahoo.BaseURL)
	overlay(&c.Yahoo.RatePerSecond, file.Yahoo.RatePerSecond)

	overlay(&c.Backup.Endpoint, file.Backup.Endpoint)
	overlay(&c.Backup.Region, file.Backup.Region)
	overlay(&c.Backup.Bucket, file.Backup.Bucket)
	overlay(&c.Backup.Schedule, file.Backup.Schedule)
	overlay(&c.Backup.RetentionDays, file.Backup.RetentionDays)
	c.Backup.UsePathStyle = c.Backup.UsePathStyle || file.Backup.UsePathStyle

	overlay(&c.Maintenance.Schedule, file.Maintenance.Schedule)
	return nil
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// SyncSymbols returns every symbol the price sync maintains: the portfolio
// basket, the regime index and any extra symbols, deduplicated in that order.
func (c *Config) SyncSymbols() []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(list ...string) {
		for _, s := range list {
			if s != "" && !seen[s] {
				seen[s] = true
				symbols = append(symbols, s)
			}
		}
	}
	add(c.Portfolio.Tickers...)
	add(c.Regime.Index)
	add(c.Sync.Symbols...)
	return symbols
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if len(c.Portfolio.Tickers) < 2 {
		errs = append(errs, fmt.Errorf("PORTFOLIO_TICKERS needs at least 2 tickers, got %d", len(c.Portfolio.Tickers)))
	}
	if c.Sync.HistoryYears <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_YEARS must be positive, got %d", c.Sync.HistoryYears))
	}
	if c.Yahoo.RatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("YAHOO_RATE_PER_SEC must be positive, got %g", c.Yahoo.RatePerSecond))
	}
	if c.Backup.Enabled() && (c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "") {
		errs = append(errs, errors.New("BACKUP_S3_BUCKET is set but BACKUP_S3_ACCESS_KEY_ID or BACKUP_S3_SECRET_ACCESS_KEY is missing"))
	}

	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
