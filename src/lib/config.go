package lib

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	devJWTSecret = "friendlynk-dev-secret"
)

// Config holds every runtime setting of the API.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	ClientURL string

	DBDriver          string
	MongoURI          string
	MongoDB           string
	MongoTransactions bool
	DBPath            string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL    string
	EventsExchange string
}

// IsProduction reports whether the service runs outside development.
func (c *Config) IsProduction() bool {
	return c.Env != "development" && c.Env != "test"
}

// LoadConfig reads .env (if present), then an optional YAML file at path,
// then the process environment. Environment variables win.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		Env:               v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		ClientURL:         v.GetString("CLIENT_URL"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		MongoTransactions: v.GetBool("MONGO_TRANSACTIONS"),
		DBPath:            v.GetString("DB_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		CacheTTL:          v.GetDuration("CACHE_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		EventsExchange:    v.GetString("EVENTS_EXCHANGE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "friendlynk")
	v.SetDefault("MONGO_TRANSACTIONS", false)
	v.SetDefault("DB_PATH", "./friendlynk.db")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 3*time.Hour)
	v.SetDefault("EVENTS_EXCHANGE", "friendlynk.events")
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when DB_DRIVER=mongo")
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWTSecret = devJWTSecret
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
