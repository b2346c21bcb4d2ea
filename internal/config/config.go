package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"

	// DefaultCartKey is the single storage slot shared by every process that
	// does not set a session.
	DefaultCartKey = "@RocketShoes:cart"
)

type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:3333"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	Storage     string `envconfig:"STORAGE" default:"file"`
	FilePath    string `envconfig:"FILE_PATH" default:"cart.json"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Session namespaces the cart key; must be a UUID when set.
	Session string `envconfig:"SESSION"`

	Currency string `envconfig:"CURRENCY" default:"BRL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads CART_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("cart", &cfg); err != nil {
		return Config{}, fmt.Errorf("envconfig.Process: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile:
		if c.FilePath == "" {
			return fmt.Errorf("file path is empty")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres dsn is empty")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis addr is empty")
		}
	default:
		return fmt.Errorf("storage[%s] is not supported", c.Storage)
	}

	if c.Session != "" {
		if _, err := uuid.Parse(c.Session); err != nil {
			return fmt.Errorf("session[%s] is not a uuid: %w", c.Session, err)
		}
	}

	if _, err := c.CurrencyUnit(); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	return nil
}

// CartKey returns the storage key, namespaced by session when one is set.
func (c Config) CartKey() string {
	if c.Session == "" {
		return DefaultCartKey
	}

	return DefaultCartKey + ":" + c.Session
}

func (c Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}

	return unit, nil
}
