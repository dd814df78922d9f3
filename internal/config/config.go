package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	POS      POSConfig
	LogLevel string
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr            string
	SessionLifetime time.Duration
	SessionCookie   string
	CookieSecure    bool
}

// DatabaseConfig contains the database connection settings. URL may be
// empty, in which case the catalog persists to JSON documents instead.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DataConfig locates the document directory holding the JSON catalog files
// and the financial statement documents.
type DataConfig struct {
	Dir string
}

// POSConfig holds point-of-sale API credentials and cache behavior.
type POSConfig struct {
	BaseURL     string
	AccessToken string
	LocationID  string
	CacheDir    string
	CacheTTL    time.Duration
}

// Configured reports whether POS credentials are present.
func (c POSConfig) Configured() bool {
	return len(strings.TrimSpace(c.AccessToken)) > 10
}

// Load inspects the environment and builds a Config value. Malformed numeric
// or duration values fall back to their defaults rather than failing startup.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		SessionLifetime: envDuration("SESSION_LIFETIME", 12*time.Hour),
		SessionCookie:   firstNonEmpty(os.Getenv("SESSION_COOKIE"), "brewcost_session"),
		CookieSecure:    envBool("SESSION_COOKIE_SECURE", false),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 0),
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 0),
		ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 0),
		ConnMaxIdleTime: envDuration("DB_CONN_MAX_IDLE_TIME", 0),
	}

	cfg.Data = DataConfig{
		Dir: firstNonEmpty(os.Getenv("DATA_DIR"), "data"),
	}

	cfg.POS = POSConfig{
		BaseURL:     firstNonEmpty(os.Getenv("POS_BASE_URL"), "https://connect.squareup.com"),
		AccessToken: os.Getenv("POS_ACCESS_TOKEN"),
		LocationID:  os.Getenv("POS_LOCATION_ID"),
		CacheDir:    firstNonEmpty(os.Getenv("POS_CACHE_DIR"), filepath.Join(cfg.Data.Dir, "pos-cache")),
		CacheTTL:    envDuration("POS_CACHE_TTL", 15*time.Minute),
	}

	cfg.LogLevel = firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
