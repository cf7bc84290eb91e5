package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/timmy/retweets/internal/domain"
)

// DatabaseConfig selects one of the supported gorm drivers.
// URL, when set, is used as the DSN verbatim.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, mysql, postgres
	Path            string        `mapstructure:"path"`   // sqlite file
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogLevel        string        `mapstructure:"log_level"`
}

// Validate checks that the driver is known and has what it needs.
func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" && c.URL == "" {
			return fmt.Errorf("database.path is required for sqlite: %w", domain.ErrInvalidInput)
		}
	case "mysql", "postgres":
		if c.URL == "" && c.Host == "" {
			return fmt.Errorf("database.host or database.url is required for %s: %w", c.Driver, domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unsupported database driver %q: %w", c.Driver, domain.ErrInvalidInput)
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=" + c.SSLMode,
		}
		return u.String()
	default:
		return c.Path
	}
}
