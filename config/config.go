// Package config reads runtime configuration from the environment and an
// optional config.env file, using viper.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // report timezones must resolve on hosts without zoneinfo

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Store  StoreConfig
	Report ReportConfig
}

type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string
}

type HTTPConfig struct {
	Host               string
	Port               int
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StoreConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	DatabaseURL   string
}

type ReportConfig struct {
	Timezone string
}

// Location resolves the report timezone, falling back to UTC.
func (c ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration. Environment variables win over config.env,
// which wins over defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // the file is optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "taproom")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 300)
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "taproom.db")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY", "taproom:snapshot")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REPORT_TIMEZONE", "America/Mexico_City")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			AllowedOrigins:     splitList(v.GetString("ALLOWED_ORIGINS")),
			RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("STORE_DRIVER")),
			SQLitePath:    v.GetString("SQLITE_PATH"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			RedisKey:      v.GetString("REDIS_KEY"),
			DatabaseURL:   v.GetString("DATABASE_URL"),
		},
		Report: ReportConfig{
			Timezone: v.GetString("REPORT_TIMEZONE"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

// IsProduction returns true when running in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.App.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
