package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string
	LogLevel    string
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	ResetDB     bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RootCacheTTL    time.Duration

	Cookie CookieConfig
}

// CookieConfig controls the attributes of the refresh token cookie.
type CookieConfig struct {
	HTTPOnly bool
	Secure   bool
	SameSite string
	Path     string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/flytrap?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     getEnvBool("RESET_DB", false),

		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 20*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RootCacheTTL:    getEnvDuration("ROOT_CACHE_TTL", 15*time.Minute),

		Cookie: CookieConfig{
			HTTPOnly: getEnvBool("COOKIE_HTTPONLY", true),
			Secure:   getEnvBool("COOKIE_SECURE", false),
			SameSite: getEnv("COOKIE_SAMESITE", "Lax"),
			Path:     getEnv("COOKIE_PATH", "/"),
		},
	}
}

// RootUser is the administrator account created by the seed command.
type RootUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoadRootUser reads the ROOT_* variables used by cmd/seed.
func LoadRootUser() (RootUser, error) {
	u := RootUser{
		Email:     os.Getenv("ROOT_EMAIL"),
		Password:  os.Getenv("ROOT_PASSWORD"),
		FirstName: getEnv("ROOT_FIRST_NAME", "Root"),
		LastName:  getEnv("ROOT_LAST_NAME", "User"),
	}
	if u.Email == "" || u.Password == "" {
		return RootUser{}, errors.New("ROOT_EMAIL and ROOT_PASSWORD must be set")
	}
	return u, nil
}

// Validate reports configuration that would make the auth layer unsafe or unusable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %s", c.RefreshTokenTTL)
	}
	if c.RootCacheTTL < 0 {
		return fmt.Errorf("ROOT_CACHE_TTL must not be negative, got %s", c.RootCacheTTL)
	}
	if _, err := parseSameSite(c.Cookie.SameSite); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether APP_ENV selects the production profile.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SameSiteMode converts the configured SameSite value. Unknown values fall back to Lax;
// Validate rejects them at startup.
func (c CookieConfig) SameSiteMode() http.SameSite {
	mode, err := parseSameSite(c.SameSite)
	if err != nil {
		return http.SameSiteLaxMode
	}
	return mode
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	case "", "default":
		return http.SameSiteDefaultMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("COOKIE_SAMESITE: unsupported value %q", v)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
