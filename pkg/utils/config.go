package utils

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Security SecurityConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	Timezone string
}

// APIConfig points at the booking backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Driver       string // cookie, redis or postgres
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SecurityConfig struct {
	CSRF               bool
	LoginRatePerMinute int
	LoginBurst         int
	// TrustedProxies are the CIDRs or addresses whose forwarding headers
	// name the client. Empty means RemoteAddr is always the client.
	TrustedProxies []string
}

// ProxyPrefixes parses TrustedProxies. A bare address is a single-host prefix.
func (s SecurityConfig) ProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

const (
	SessionDriverCookie   = "cookie"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

// Location resolves the configured timezone, falling back to the process zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "carwash-web")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "")
	viper.SetDefault("API_BASE_URL", "https://carwash-backend-1k0a.onrender.com/api")
	viper.SetDefault("API_TIMEOUT", 0)
	viper.SetDefault("SESSION_DRIVER", SessionDriverCookie)
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("CSRF_ENABLED", true)
	viper.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	viper.SetDefault("LOGIN_BURST", 5)
	viper.SetDefault("TRUSTED_PROXIES", "")

	// .env is optional, the environment alone is enough in containers
	if _, err := os.Stat(".env"); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Port:     viper.GetString("PORT"),
			Debug:    viper.GetBool("DEBUG"),
			LogPath:  viper.GetString("LOG_PATH"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("API_TIMEOUT")) * time.Second,
		},
		Session: SessionConfig{
			Driver:       viper.GetString("SESSION_DRIVER"),
			Secret:       viper.GetString("SESSION_SECRET"),
			TTL:          time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
			SecureCookie: viper.GetBool("COOKIE_SECURE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Security: SecurityConfig{
			CSRF:               viper.GetBool("CSRF_ENABLED"),
			LoginRatePerMinute: viper.GetInt("LOGIN_RATE_PER_MINUTE"),
			LoginBurst:         viper.GetInt("LOGIN_BURST"),
			TrustedProxies:     strings.Split(viper.GetString("TRUSTED_PROXIES"), ","),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if _, err := c.Security.ProxyPrefixes(); err != nil {
		return err
	}
	switch c.Session.Driver {
	case SessionDriverCookie, SessionDriverRedis:
	case SessionDriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres session driver")
		}
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.Session.Driver)
	}
	return nil
}
