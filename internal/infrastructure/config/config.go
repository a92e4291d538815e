package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	RegistrationAdminOnly = "admin_only"
	RegistrationOpen      = "open"

	DefaultAdminPassword = "adminpass"
)

type Config struct {
	Port      string `env:"PORT,       default=3000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	StaticDir string `env:"STATIC_DIR"`

	RegistrationPolicy string `env:"REGISTRATION_POLICY, default=admin_only"`

	// TrustProxy reads client addresses from X-Forwarded-For. Leave it off
	// unless a proxy in front of the service overwrites that header.
	TrustProxy bool `env:"TRUST_PROXY, default=false"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Admin   AdminConfig
	Login   LoginConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clicktracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	Backend      string        `env:"SESSION_BACKEND,       default=memory"`
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=clicktracker_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

// AdminConfig names the account created on first boot.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Password string `env:"ADMIN_PASSWORD, default=adminpass"`
}

type LoginConfig struct {
	RateLimit float64 `env:"LOGIN_RATE_LIMIT, default=5"`
	RateBurst int     `env:"LOGIN_RATE_BURST, default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendRedis, c.Session.Backend))
	}

	switch c.RegistrationPolicy {
	case RegistrationAdminOnly, RegistrationOpen:
	default:
		errs = append(errs, fmt.Errorf("REGISTRATION_POLICY must be %q or %q, got %q",
			RegistrationAdminOnly, RegistrationOpen, c.RegistrationPolicy))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.Secret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("SESSION_SECRET is required outside development"))
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty"))
	}
	if c.Login.RateLimit <= 0 || c.Login.RateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_BURST must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// SessionSecret returns the signing secret, falling back to a fixed
// development value when none is configured.
func (c *Config) SessionSecret() string {
	if c.Session.Secret == "" {
		return "clicktracker-development-secret"
	}
	return c.Session.Secret
}
