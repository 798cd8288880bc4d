package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultDatabaseURI is used when neither DATABASE_URL nor an override names a database.
const DefaultDatabaseURI = "sqlite:///library.db"

// Config holds application level configuration.
type Config struct {
	Env         string        `mapstructure:"env" validate:"required"`
	ServerPort  string        `mapstructure:"server_port" validate:"required,numeric"`
	DatabaseURI string        `mapstructure:"database_uri" validate:"required"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPass   string        `mapstructure:"redis_password"`
	RedisDB     int           `mapstructure:"redis_db" validate:"gte=0"`
	LogLevel    string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	SwaggerHost string        `mapstructure:"swagger_host"`
	SeedLockTTL time.Duration `mapstructure:"seed_lock_ttl" validate:"gt=0"`
}

// envBindings maps configuration keys to the environment variables that feed them.
var envBindings = map[string]string{
	"env":            "APP_ENV",
	"server_port":    "SERVER_PORT",
	"database_uri":   "DATABASE_URL",
	"redis_addr":     "REDIS_ADDR",
	"redis_password": "REDIS_PASSWORD",
	"redis_db":       "REDIS_DB",
	"log_level":      "LOG_LEVEL",
	"swagger_host":   "SWAGGER_HOST",
}

// overrideAliases lets callers override database_uri with the key name
// older deployments already pass.
var overrideAliases = map[string]string{
	"sqlalchemy_database_uri": "database_uri",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server_port", "8080")
	v.SetDefault("database_uri", DefaultDatabaseURI)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("swagger_host", "")
	v.SetDefault("seed_lock_ttl", 30*time.Second)
}

// Load resolves the effective configuration. Compiled-in defaults come first,
// then environment variables, then overrides applied key by key. Override keys
// are case-insensitive; keys the Config does not know are ignored.
func Load(overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	for alias, key := range overrideAliases {
		v.RegisterAlias(alias, key)
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}
