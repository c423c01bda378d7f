package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		Algorithm string `mapstructure:"algorithm"`
		// AccessKey signs and verifies access tokens. Its environment
		// variable is JWT_PUBLIC_KEY for historical reasons; the value is a
		// plain HMAC secret, not an actual public key.
		AccessKey string `mapstructure:"access_key"`
		// RefreshKey signs and verifies refresh tokens (env JWT_PRIVATE_KEY).
		RefreshKey string `mapstructure:"refresh_key"`
		// Token lifetimes in minutes.
		AccessTokenExpiresIn  int `mapstructure:"access_token_expires_in"`
		RefreshTokenExpiresIn int `mapstructure:"refresh_token_expires_in"`
	} `mapstructure:"jwt"`
}

// Load reads config.yml from path and applies environment overrides.
// The returned struct is passed explicitly into each component's
// constructor; nothing reads configuration at import time.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_token_expires_in", 30)
	v.SetDefault("jwt.refresh_token_expires_in", 60)

	v.AutomaticEnv()
	// Historical environment names, kept so existing deployments keep
	// working without .env changes.
	v.BindEnv("jwt.algorithm", "JWT_ALGORITHM")
	v.BindEnv("jwt.access_key", "JWT_PUBLIC_KEY")
	v.BindEnv("jwt.refresh_key", "JWT_PRIVATE_KEY")
	v.BindEnv("jwt.access_token_expires_in", "ACCESS_TOKEN_EXPIRES_IN")
	v.BindEnv("jwt.refresh_token_expires_in", "REFRESH_TOKEN_EXPIRES_IN")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return cfg, nil
}
