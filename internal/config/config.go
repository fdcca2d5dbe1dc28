package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevSessionSecret is the signing secret used when none is configured. It is
// refused in production.
const DevSessionSecret = "dev-secret"

// ErrInsecureSessionSecret is returned when production runs without a real signing secret.
var ErrInsecureSessionSecret = errors.New("AUTH_SESSION_SECRET must be set in production")

// ShortSessionMaxAge is the lifetime of a session when the caller did not ask to be remembered.
const ShortSessionMaxAge = 2 * time.Hour

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string   `env:"APP_NAME" envDefault:"pequemaths-api"`
	Env                   string   `env:"APP_ENV" envDefault:"development"`
	Host                  string   `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string   `env:"APP_PORT" envDefault:"8080"`
	Version               string   `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"10"`
	LoginPath             string   `env:"APP_LOGIN_PATH" envDefault:"/log-in"`
	ProtectedPrefixes     []string `env:"APP_PROTECTED_PREFIXES" envDefault:"/profile,/admin" envSeparator:","`
}

// PostgresConfig holds DB connection values for the identity directory.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values for profile records and revocations.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines how identity tokens are verified and sessions signed.
// Issuer is the OIDC issuer of client ID tokens, e.g. https://securetoken.google.com/<project>,
// and Audience the expected "aud" claim.
type AuthConfig struct {
	Issuer        string `env:"AUTH_ID_TOKEN_ISSUER"`
	Audience      string `env:"AUTH_ID_TOKEN_AUDIENCE"`
	SessionSecret string `env:"AUTH_SESSION_SECRET" envDefault:"dev-secret"`
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName   string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	MaxAgeSecond int    `env:"SESSION_COOKIE_MAX_AGE" envDefault:"28800"`
}

// RateLimitConfig bounds session issuance per client address.
type RateLimitConfig struct {
	LoginPerMinute int `env:"RATE_LIMIT_LOGIN_PER_MINUTE" envDefault:"20"`
	LoginBurst     int `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"10"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that are unsafe to serve with.
func (c *Config) Validate() error {
	if !c.App.IsProduction() {
		return nil
	}
	secret := strings.TrimSpace(c.Auth.SessionSecret)
	if secret == "" || secret == DevSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}

// Sanitize applies guardrails to configuration values.
func (c *Config) Sanitize() {
	if strings.TrimSpace(c.Session.CookieName) == "" {
		c.Session.CookieName = "__session"
	}
	if c.Session.MaxAgeSecond <= 0 {
		c.Session.MaxAgeSecond = 60 * 60 * 8
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		c.RateLimit.LoginPerMinute = 20
	}
	if c.RateLimit.LoginBurst <= 0 {
		c.RateLimit.LoginBurst = 1
	}
	if c.App.LoginPath == "" {
		c.App.LoginPath = "/log-in"
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LongMaxAge is the lifetime of a remembered session.
func (s SessionConfig) LongMaxAge() time.Duration {
	return time.Duration(s.MaxAgeSecond) * time.Second
}

// MaxAge picks the session lifetime for the caller's remember preference.
func (s SessionConfig) MaxAge(remember bool) time.Duration {
	if remember {
		return s.LongMaxAge()
	}
	return ShortSessionMaxAge
}
