package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	// DriverMySQL selects the MySQL gorm dialector.
	DriverMySQL = "mysql"
	// DriverSQLite selects the embedded sqlite gorm dialector.
	DriverSQLite = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"debug"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	MySQLDSN   string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"userauth.db"`
	ResetDB    bool   `env:"RESET_DB" envDefault:"false"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	// SecretKeyBase signs every issued bearer token. It is read once at
	// startup and never rotated while the process runs.
	SecretKeyBase string `env:"SECRET_KEY_BASE" envDefault:"change-me"`
	// VerifySignature makes the Auth Gate re-verify the token signature after
	// the stored row matched.
	VerifySignature bool `env:"AUTH_VERIFY_SIGNATURE" envDefault:"false"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKeyBase == "" {
		return errors.New("SECRET_KEY_BASE must not be empty")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
