package goSession

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Session  SessionConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// RequestTimeout caps every public Engine operation. A zero value
	// disables the engine-imposed deadline; caller deadlines always apply.
	RequestTimeout time.Duration
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goSession APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	AccessSecret  []byte
	RefreshSecret []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goSession APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	BcryptCost int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 15m access TTL, 7d
// refresh TTL, HS256 signing, bcrypt cost 10, 30s request timeout. Callers
// must still supply signing secrets before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			BcryptCost: 10,
		},
		Session: SessionConfig{
			RedisPrefix: "gs",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		RequestTimeout: 30 * time.Second,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = append([]byte(nil), cfg.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), cfg.JWT.RefreshSecret...)
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		return errors.New("jwt TTLs must be positive")
	}
	if cfg.JWT.RefreshTTL <= cfg.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	switch cfg.JWT.SigningMethod {
	case "", "hs256":
		if len(cfg.JWT.AccessSecret) == 0 || len(cfg.JWT.RefreshSecret) == 0 {
			return errors.New("hs256 requires access and refresh secrets")
		}
	case "ed25519":
		if len(cfg.JWT.PrivateKey) == 0 || len(cfg.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires a key pair")
		}
	default:
		return errors.New("unsupported signing method")
	}
	return nil
}

type envConfig struct {
	AccessSecret   string        `env:"JWT_ACCESS_SECRET,required"`
	AccessTTL      time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshSecret  string        `env:"JWT_REFRESH_SECRET,required"`
	RefreshTTL     time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
	Issuer         string        `env:"JWT_ISSUER"`
	RedisPrefix    string        `env:"SESSION_REDIS_PREFIX" envDefault:"gs"`
	BcryptCost     int           `env:"PASSWORD_BCRYPT_COST" envDefault:"10"`
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"30s"`
	AuditEnabled   bool          `env:"AUDIT_ENABLED" envDefault:"false"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

// ConfigFromEnv builds a Config from process environment variables, mirroring
// the deployment schema (JWT_ACCESS_SECRET, JWT_REFRESH_SECRET, TTLs, session
// prefix, bcrypt cost, request timeout). Missing required secrets fail fast.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte(ec.AccessSecret)
	cfg.JWT.AccessTTL = ec.AccessTTL
	cfg.JWT.RefreshSecret = []byte(ec.RefreshSecret)
	cfg.JWT.RefreshTTL = ec.RefreshTTL
	cfg.JWT.Issuer = ec.Issuer
	cfg.Session.RedisPrefix = ec.RedisPrefix
	cfg.Password.BcryptCost = ec.BcryptCost
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.Audit.Enabled = ec.AuditEnabled
	cfg.Metrics.Enabled = ec.MetricsEnabled

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
