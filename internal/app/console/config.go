package console

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Apurer/pharmacy-dispatch/internal/domains/auth/adapters/file"
)

// Token store backends selectable with PHARMACY_TOKEN_STORE.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config carries the settings of the operator console.
type Config struct {
	APIURL          string        `mapstructure:"PHARMACY_API_URL"`
	TokenStore      string        `mapstructure:"PHARMACY_TOKEN_STORE"`
	TokenFile       string        `mapstructure:"PHARMACY_TOKEN_FILE"`
	Profile         string        `mapstructure:"PHARMACY_PROFILE"`
	PostgresDSN     string        `mapstructure:"POSTGRES_DSN"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RequestTimeout  time.Duration `mapstructure:"PHARMACY_REQUEST_TIMEOUT"`
	MonitorInterval time.Duration `mapstructure:"PHARMACY_MONITOR_INTERVAL"`
	ScanTimeout     time.Duration `mapstructure:"PHARMACY_SCAN_TIMEOUT"`
	LogLevel        string        `mapstructure:"PHARMACY_LOG_LEVEL"`
}

// LoadConfig merges defaults, an optional config file and the environment.
// With an empty path the file is looked up as pharmactl.yaml in the user
// config directory and may be absent.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("PHARMACY_API_URL", "http://localhost:8000")
	v.SetDefault("PHARMACY_TOKEN_STORE", StoreFile)
	v.SetDefault("PHARMACY_TOKEN_FILE", file.DefaultPath())
	v.SetDefault("PHARMACY_PROFILE", "default")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("PHARMACY_REQUEST_TIMEOUT", "0s")
	v.SetDefault("PHARMACY_MONITOR_INTERVAL", "10s")
	v.SetDefault("PHARMACY_SCAN_TIMEOUT", "60s")
	v.SetDefault("PHARMACY_LOG_LEVEL", "warn")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "pharmactl"))
		v.SetConfigName("pharmactl")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.TokenStore = strings.ToLower(strings.TrimSpace(cfg.TokenStore))
	cfg.Profile = strings.TrimSpace(cfg.Profile)
	return cfg, cfg.Validate()
}

// Validate checks basic constraints.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("PHARMACY_API_URL must not be empty")
	}
	switch c.TokenStore {
	case StoreFile, StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("PHARMACY_TOKEN_STORE must be one of file, memory, postgres, redis; got %q", c.TokenStore)
	}
	if c.RequestTimeout < 0 {
		return errors.New("PHARMACY_REQUEST_TIMEOUT must not be negative")
	}
	if c.MonitorInterval <= 0 {
		return errors.New("PHARMACY_MONITOR_INTERVAL must be positive")
	}
	if c.ScanTimeout <= 0 {
		return errors.New("PHARMACY_SCAN_TIMEOUT must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses PHARMACY_LOG_LEVEL.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("PHARMACY_LOG_LEVEL: %w", err)
	}
	return level, nil
}
