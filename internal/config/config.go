// Package config loads server settings from defaults, an optional YAML file
// and KSA_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. KSA_DB_DSN.
const EnvPrefix = "KSA"

// DB selects the table storage.
type DB struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite pgx"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// Mail configures outgoing account mail. An empty ResendKey selects the noop sender.
type Mail struct {
	ResendKey string `mapstructure:"resend_key"`
	From      string `mapstructure:"from" validate:"required"`
}

// Config holds everything cmd/server needs to start.
type Config struct {
	Addr          string        `mapstructure:"addr" validate:"required"`
	Env           string        `mapstructure:"env" validate:"oneof=development production"`
	LogLevel      string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	DB            DB            `mapstructure:"db"`
	CSRFKey       string        `mapstructure:"csrf_key" validate:"required_if=Env production,omitempty,hexadecimal,len=64"`
	RedisAddr     string        `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"min=1m"`
	StorageRoot   string        `mapstructure:"storage_root" validate:"required"`
	PublicBaseURL string        `mapstructure:"public_base_url" validate:"required,url"`
	Mail          Mail          `mapstructure:"mail"`
	AdminEmail    string        `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string        `mapstructure:"admin_password" validate:"required_with=AdminEmail,omitempty,min=8"`
	SlowQuery     time.Duration `mapstructure:"slow_query"`
	SlowRequest   time.Duration `mapstructure:"slow_request"`
	RateLimit     int           `mapstructure:"rate_limit" validate:"min=0"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "ksa.db")
	v.SetDefault("csrf_key", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("session_ttl", "168h")
	v.SetDefault("storage_root", "data/storage")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("mail.resend_key", "")
	v.SetDefault("mail.from", "KSA Petegem <leiding@ksapetegem.be>")
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("slow_query", "50ms")
	v.SetDefault("slow_request", "200ms")
	v.SetDefault("rate_limit", 20)
}

// Load reads configuration. path may be empty; a missing explicit file is an error.
// PRE: none
// POST: returned config passed Validate
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs the struct tag rules and the cross-field checks.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.IsProduction() && c.DB.Driver == "sqlite" && strings.Contains(c.DB.DSN, ":memory:") {
		return errors.New("config validation failed: in-memory database in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
