// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Token store backend names accepted in TOKEN_STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	APIBaseURL        string `mapstructure:"API_BASE_URL"`
	CDNCloudName      string `mapstructure:"CDN_CLOUD_NAME"`
	TokenStoreBackend string `mapstructure:"TOKEN_STORE_BACKEND"`
	TokenStorePath    string `mapstructure:"TOKEN_STORE_PATH"`
	TokenPassphrase   string `mapstructure:"TOKEN_PASSPHRASE"`
	RedisURL          string `mapstructure:"REDIS_URL"`
	Env               string `mapstructure:"APP_ENV"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables and defaults are
	// enough to run.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("API_BASE_URL", "https://campus-info.onrender.com/v1/")
	viper.SetDefault("CDN_CLOUD_NAME", "campus-info")
	viper.SetDefault("TOKEN_STORE_BACKEND", BackendFile)
	viper.SetDefault("TOKEN_STORE_PATH", ".campusbuzz/token")
	viper.SetDefault("TOKEN_PASSPHRASE", "change-me-in-production")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}

	switch c.TokenStoreBackend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("TOKEN_STORE_BACKEND must be one of %q, %q, %q", BackendMemory, BackendFile, BackendRedis)
	}

	if c.TokenStoreBackend == BackendFile {
		if c.TokenStorePath == "" {
			return errors.New("TOKEN_STORE_PATH is required for the file token store")
		}
		if c.TokenPassphrase == "" {
			return errors.New("TOKEN_PASSPHRASE is required for the file token store")
		}
	}
	if c.TokenStoreBackend == BackendRedis && c.RedisURL == "" {
		return errors.New("REDIS_URL is required for the redis token store")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction && c.TokenPassphrase == "change-me-in-production" {
		return errors.New("TOKEN_PASSPHRASE must be changed from the default value in production")
	}

	return nil
}
