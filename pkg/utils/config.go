package utils

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Bootstrap BootstrapConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	Timezone       string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours     int
	CleanupInterval time.Duration
}

type HTTPConfig struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// RedisConfig is optional; an empty Addr disables the username cache.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	UsernameTTL time.Duration
}

type BootstrapConfig struct {
	MigrateOnStart bool
	SeedOnStart    bool
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "cineclub")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "Europe/Istanbul")
	viper.SetDefault("REQUEST_TIMEOUT", "15s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("SESSION_CLEANUP_INTERVAL", "1h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("USERNAME_CACHE_TTL", "10m")
	viper.SetDefault("MIGRATE_ON_START", true)
	viper.SetDefault("SEED_ON_START", false)
	viper.SetDefault("SEED_ADMIN_USERNAME", "admin")
	viper.SetDefault("SEED_ADMIN_EMAIL", "admin@cineclub.local")

	// .env is optional, plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			Timezone:       viper.GetString("APP_TIMEZONE"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours:     viper.GetInt("SESSION_EXPIRY_HOURS"),
			CleanupInterval: viper.GetDuration("SESSION_CLEANUP_INTERVAL"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			RateLimitRequests:  viper.GetInt("RATE_LIMIT_REQUESTS"),
			RateLimitWindow:    viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Redis: RedisConfig{
			Addr:        viper.GetString("REDIS_ADDR"),
			Password:    viper.GetString("REDIS_PASSWORD"),
			DB:          viper.GetInt("REDIS_DB"),
			UsernameTTL: viper.GetDuration("USERNAME_CACHE_TTL"),
		},
		Bootstrap: BootstrapConfig{
			MigrateOnStart: viper.GetBool("MIGRATE_ON_START"),
			SeedOnStart:    viper.GetBool("SEED_ON_START"),
			AdminUsername:  viper.GetString("SEED_ADMIN_USERNAME"),
			AdminEmail:     viper.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword:  viper.GetString("SEED_ADMIN_PASSWORD"),
		},
	}

	return config, nil
}

// DSN builds a pgx connection string
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
