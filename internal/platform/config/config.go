package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, parsed from the environment.
type Config struct {
	Server   Server
	Redis    RedisConfig
	Throttle ThrottleConfig
	Session  SessionConfig
	Mail     MailConfig
	Geocoder GeocoderConfig
	Audit    AuditConfig

	// MaxLocalityChanges caps accepted locality selections per requester.
	MaxLocalityChanges int64  `env:"PROCURATION_MAX_LOCALITY_CHANGES" envDefault:"3"`
	LogLevel           string `env:"PROCURATION_LOG_LEVEL"            envDefault:"info"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `env:"PROCURATION_ADDR" envDefault:":8080"`
	// Host is the public base URL used to build emailed links.
	Host string `env:"PROCURATION_HOST" envDefault:"http://localhost:8080"`
	// TrustProxy honours X-Forwarded-For when resolving the throttle origin.
	TrustProxy bool `env:"PROCURATION_TRUST_PROXY"`
	// AdminToken guards the back-office routes; empty disables them.
	AdminToken string `env:"PROCURATION_ADMIN_TOKEN"`
}

// RedisConfig configures the go-redis client. An empty URL selects the
// in-memory stores (development only, not shared between instances).
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
	// LockTTL bounds how long a per-requester lock survives a crashed holder.
	LockTTL time.Duration `env:"REDIS_LOCK_TTL" envDefault:"10s"`
}

// ThrottleConfig is the per-origin submission throttle.
type ThrottleConfig struct {
	Limit     int           `env:"THROTTLE_LIMIT"     envDefault:"3"`
	Window    time.Duration `env:"THROTTLE_WINDOW"    envDefault:"60s"`
	Allowlist []string      `env:"THROTTLE_ALLOWLIST" envSeparator:","`
	Disabled  bool          `env:"THROTTLE_DISABLED"`
}

// SessionConfig signs the session cookie issued after email verification.
type SessionConfig struct {
	SigningKey string        `env:"SESSION_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	TTL        time.Duration `env:"SESSION_TTL"         envDefault:"24h"`
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"procuration_session"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE"`
}

// MailConfig selects the mail transport. Without an API key, mails are logged.
type MailConfig struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	FromName       string `env:"MAIL_FROM_NAME"    envDefault:"Procuration"`
	FromAddress    string `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@localhost"`
	SandboxMode    bool   `env:"SENDGRID_SANDBOX_MODE"`
	// ConsularListDest receives consular-list requests.
	ConsularListDest string        `env:"MAIL_CONSULAR_LIST_DEST" envDefault:"lec@localhost"`
	Timeout          time.Duration `env:"MAIL_TIMEOUT"            envDefault:"10s"`
}

// GeocoderConfig points at the national address API.
type GeocoderConfig struct {
	BaseURL string        `env:"GEOCODER_BASE_URL" envDefault:"https://api-adresse.data.gouv.fr"`
	Timeout time.Duration `env:"GEOCODER_TIMEOUT"  envDefault:"5s"`

	// RetryInterval spaces API calls while the circuit is open.
	RetryInterval time.Duration `env:"GEOCODER_RETRY_INTERVAL" envDefault:"10s"`
}

// AuditConfig enables publishing audit events to Kafka when brokers are set.
type AuditConfig struct {
	Brokers []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"AUDIT_KAFKA_TOPIC"   envDefault:"procuration.audit"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxLocalityChanges <= 0 {
		return Config{}, fmt.Errorf("PROCURATION_MAX_LOCALITY_CHANGES must be positive")
	}
	if cfg.Throttle.Limit <= 0 || cfg.Throttle.Window <= 0 {
		return Config{}, fmt.Errorf("throttle limit and window must be positive")
	}
	return cfg, nil
}
