package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default secrets are rejected in prod
const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// Config holds all configuration for the application
type Config struct {
	AppMode         string
	Port            string
	DBDriver        string
	Database        DatabaseConfig
	JWT             JWTConfig
	Revocation      RevocationConfig
	Pagination      PaginationConfig
	BcryptCost      int
	DefaultCurrency string
	LogLevel        string
	SeedAdmin       SeedAdminConfig
	RateLimit       RateLimitConfig

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	ConnectTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	Issuer           string
	AccessTokenMins  int
	RefreshTokenDays int
	Rotation         string
}

// AccessTTL returns the access token lifetime
func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenMins) * time.Minute
}

// RefreshTTL returns the refresh token lifetime
func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

// RevocationConfig selects where strict-mode revocations are kept
type RevocationConfig struct {
	Backend   string
	RedisURL  string
	PurgeCron string
}

// PaginationConfig holds page size limits
type PaginationConfig struct {
	DefaultSize int
	MaxSize     int
}

// RateLimitConfig holds per-IP request limits per minute. Zero disables a
// limiter.
type RateLimitConfig struct {
	General int
	Auth    int
}

// SeedAdminConfig holds the optional bootstrap SUPER_ADMIN
type SeedAdminConfig struct {
	Username string
	Password string
}

// Enabled reports whether both seed values are present
func (s SeedAdminConfig) Enabled() bool {
	return s.Username != "" && s.Password != ""
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	envLoaded := godotenv.Load() == nil

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	p := &parser{}
	config := &Config{
		AppMode:         appMode,
		Port:            getEnv("PORT", "3000"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Database:        loadDatabaseConfig(appMode, p),
		JWT:             loadJWTConfig(appMode, p),
		Revocation:      loadRevocationConfig(),
		BcryptCost:      p.int("BCRYPT_COST", 12),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		Pagination: PaginationConfig{
			DefaultSize: p.int("DEFAULT_PAGE_SIZE", 10),
			MaxSize:     p.int("MAX_PAGE_SIZE", 100),
		},
		RateLimit: RateLimitConfig{
			General: p.int("RATE_LIMIT_PER_MINUTE", 100),
			Auth:    p.int("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		},
		SeedAdmin: SeedAdminConfig{
			Username: os.Getenv("SEED_ADMIN_USERNAME"),
			Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		},
		EnvFileLoaded: envLoaded,
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string, p *parser) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:           getEnv(prefix+"DB_HOST", "localhost"),
		Port:           getEnv(prefix+"DB_PORT", "3306"),
		User:           getEnv(prefix+"DB_USER", "root"),
		Password:       getEnv(prefix+"DB_PASS", ""),
		DBName:         getEnv(prefix+"DB_NAME", "finance_backoffice"),
		ConnectTimeout: time.Duration(p.int("DB_CONNECT_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string, p *parser) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		Issuer:           getEnv("JWT_ISSUER", "finance-backoffice"),
		AccessTokenMins:  p.int("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: p.int("REFRESH_TOKEN_DAYS", 7),
		Rotation:         strings.ToLower(getEnv("REFRESH_TOKEN_ROTATION", "reuse")),
	}
}

func loadRevocationConfig() RevocationConfig {
	return RevocationConfig{
		Backend:   strings.ToLower(getEnv("REVOCATION_BACKEND", "db")),
		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PurgeCron: getEnv("REVOCATION_PURGE_CRON", "@hourly"),
	}
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	var errs []error

	if c.DBDriver != "mysql" && c.DBDriver != "memory" {
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'memory')", c.DBDriver))
	}
	if c.JWT.AccessTokenMins <= 0 || c.JWT.RefreshTokenDays <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_MINUTES and REFRESH_TOKEN_DAYS must be positive"))
	} else if c.JWT.AccessTTL() > c.JWT.RefreshTTL() {
		errs = append(errs, errors.New("access token lifetime must not exceed refresh token lifetime"))
	}
	if c.JWT.Secret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT secrets must not be empty"))
	}
	if c.IsProd() && (c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		errs = append(errs, errors.New("default JWT secrets are not allowed in prod"))
	}
	if c.JWT.Rotation != "reuse" && c.JWT.Rotation != "strict" {
		errs = append(errs, fmt.Errorf("invalid REFRESH_TOKEN_ROTATION: '%s' (must be 'reuse' or 'strict')", c.JWT.Rotation))
	}
	if c.Revocation.Backend != "db" && c.Revocation.Backend != "redis" {
		errs = append(errs, fmt.Errorf("invalid REVOCATION_BACKEND: '%s' (must be 'db' or 'redis')", c.Revocation.Backend))
	}
	if c.Pagination.DefaultSize <= 0 || c.Pagination.MaxSize <= 0 {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE and MAX_PAGE_SIZE must be positive"))
	} else if c.Pagination.DefaultSize > c.Pagination.MaxSize {
		errs = append(errs, errors.New("DEFAULT_PAGE_SIZE must not exceed MAX_PAGE_SIZE"))
	}
	if c.RateLimit.General < 0 || c.RateLimit.Auth < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST: %d (must be 4..31)", c.BcryptCost))
	}
	if len(c.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Errorf("invalid DEFAULT_CURRENCY: '%s'", c.DefaultCurrency))
	}

	return errors.Join(errs...)
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://backoffice.example.com"
	}
	return origins
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parser collects integer parse failures so they can be reported together
type parser struct {
	errs []error
}

func (p *parser) int(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: '%s' is not an integer", key, raw))
		return def
	}
	return v
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
