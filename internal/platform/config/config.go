package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/recipe-hub/api/internal/domain"
)

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultCookieName      = "recipe_hub_session"
	defaultSessionLifetime = 12 * time.Hour
	sessionKeyLength       = 32
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	Session SessionConfig
	CORS    CORSConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SiteConfig holds the startup document target. The gist id defaults to the
// compiled-in placeholder, which puts the application in demo/setup mode.
type SiteConfig struct {
	GistID string
}

// SessionConfig controls the signed session cookie. When no hash key is
// provided a random one is generated, which invalidates sessions on restart.
type SessionConfig struct {
	CookieName   string
	HashKey      []byte
	BlockKey     []byte
	CookieSecure bool
	Lifetime     time.Duration

	// GeneratedHashKey reports that the hash key was not configured and had
	// to be generated, so the caller can warn about it.
	GeneratedHashKey bool
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Load assembles the application configuration. A nil lookup reads the
// process environment after applying an optional .env file; tests inject
// their own lookup.
func Load(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		_ = godotenv.Load()
		lookup = os.LookupEnv
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Site: SiteConfig{
			GistID: stringWithDefault(lookup, "GIST_ID", domain.PlaceholderGistID),
		},
		Session: SessionConfig{
			CookieName:   stringWithDefault(lookup, "SESSION_COOKIE_NAME", defaultCookieName),
			HashKey:      []byte(stringWithDefault(lookup, "SESSION_HASH_KEY", "")),
			BlockKey:     []byte(stringWithDefault(lookup, "SESSION_BLOCK_KEY", "")),
			CookieSecure: boolWithDefault(lookup, "SESSION_COOKIE_SECURE", false),
			Lifetime:     durationWithDefault(lookup, "SESSION_LIFETIME", defaultSessionLifetime),
		},
		CORS: CORSConfig{
			AllowedOrigins: csvWithDefault(lookup, "CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if len(cfg.Session.HashKey) == 0 {
		key := make([]byte, sessionKeyLength)
		if _, err := rand.Read(key); err != nil {
			return Config{}, fmt.Errorf("config: generate session hash key: %w", err)
		}
		cfg.Session.HashKey = key
		cfg.Session.GeneratedHashKey = true
	}
	if len(cfg.Session.BlockKey) == 0 {
		cfg.Session.BlockKey = nil
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Session.Lifetime <= 0 {
		missing = append(missing, "Session.Lifetime")
	}
	if key := len(cfg.Session.BlockKey); key != 0 && key != 16 && key != 24 && key != 32 {
		missing = append(missing, "Session.BlockKey")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
