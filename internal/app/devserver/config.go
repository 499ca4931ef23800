package devserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries environment-driven settings for the development backend.
type Config struct {
	Port        string        `mapstructure:"PORT"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`
	Environment string        `mapstructure:"ENVIRONMENT"`
	Seed        bool          `mapstructure:"DEVSERVER_SEED"`
}

// LoadConfig reads an optional .env file from path and the process
// environment, applies defaults, and validates basic constraints.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8000")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_TTL", "30m")
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("DEVSERVER_SEED", true)
	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName(".env")
		v.SetConfigType("env")
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
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		return Config{}, errors.New("PORT must not be empty")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be a positive duration, got %s", cfg.JWTTTL)
	}
	return cfg, nil
}

// Addr is the listen address for the gin engine.
func (c Config) Addr() string { return ":" + c.Port }
