package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	platformstrings "canvass/pkg/platform/strings"
)

// Backend names accepted by the Auth, Store, Session and Audit sections.
const (
	BackendHosted    = "hosted"
	BackendDirectory = "directory"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendLog       = "log"
	BackendKafka     = "kafka"
)

// Config is the full configuration for both binaries. Each binary reads the
// sections it needs.
type Config struct {
	Environment string
	LogLevel    string
	Profile     string

	Verifier VerifierConfig
	Hosted   HostedConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Store    StoreConfig
	Session  SessionConfig
	Audit    AuditConfig
}

// VerifierConfig covers the verification endpoint server and the collector's client of it.
type VerifierConfig struct {
	Addr          string
	URL           string
	CacheBackend  string
	CacheTTL      time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ShutdownGrace time.Duration
	RateLimit     int
	RateBurst     int
	// TrustedProxies lists CIDRs or addresses whose forwarding headers are believed.
	TrustedProxies []string
}

// HostedConfig points at the hosted auth/REST backend.
type HostedConfig struct {
	URL    string
	APIKey string
}

// PostgresConfig is used by the self-hosted directory and record store.
type PostgresConfig struct {
	URL string
}

// RedisConfig captures go-redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig selects the operator authentication backend.
type AuthConfig struct {
	Backend       string
	JWTSigningKey string
	TokenTTL      time.Duration
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string
}

// SessionConfig selects where the operator session survives restarts.
type SessionConfig struct {
	Backend string
	Path    string
}

// AuditConfig selects the audit event sink.
type AuditConfig struct {
	Backend string
	Brokers []string
	Topic   string
}

// IsDevelopment reports whether the process runs with development defaults.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads configuration from defaults, an optional YAML file and CANVASS_*
// environment variables, in increasing order of precedence. An empty path
// looks for canvass.yaml in the working directory; a missing file is not an error.
// Load does not validate: each binary calls the Validate method for the
// sections it uses.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CANVASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("canvass")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Environment: v.GetString("environment"),
		LogLevel:    v.GetString("log.level"),
		Profile:     v.GetString("profile"),
		Verifier: VerifierConfig{
			Addr:           v.GetString("verifier.addr"),
			URL:            v.GetString("verifier.url"),
			CacheBackend:   v.GetString("verifier.cache"),
			CacheTTL:       v.GetDuration("verifier.cache_ttl"),
			ReadTimeout:    v.GetDuration("verifier.read_timeout"),
			WriteTimeout:   v.GetDuration("verifier.write_timeout"),
			ShutdownGrace:  v.GetDuration("verifier.shutdown_grace"),
			RateLimit:      v.GetInt("verifier.rate_limit"),
			RateBurst:      v.GetInt("verifier.rate_burst"),
			TrustedProxies: platformstrings.SplitList(v.GetString("verifier.trusted_proxies"), ","),
		},
		Hosted: HostedConfig{
			URL:    strings.TrimRight(v.GetString("hosted.url"), "/"),
			APIKey: v.GetString("hosted.api_key"),
		},
		Postgres: PostgresConfig{
			URL: v.GetString("postgres.url"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
		},
		Auth: AuthConfig{
			Backend:       v.GetString("auth.backend"),
			JWTSigningKey: v.GetString("auth.jwt_signing_key"),
			TokenTTL:      v.GetDuration("auth.token_ttl"),
		},
		Store: StoreConfig{
			Backend: v.GetString("store.backend"),
		},
		Session: SessionConfig{
			Backend: v.GetString("session.backend"),
			Path:    v.GetString("session.path"),
		},
		Audit: AuditConfig{
			Backend: v.GetString("audit.backend"),
			Brokers: platformstrings.SplitList(v.GetString("audit.brokers"), ","),
			Topic:   v.GetString("audit.topic"),
		},
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = defaultSessionPath()
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("profile", "default")

	v.SetDefault("verifier.addr", ":8081")
	v.SetDefault("verifier.url", "http://localhost:8081/verify-voter")
	v.SetDefault("verifier.cache", BackendMemory)
	v.SetDefault("verifier.cache_ttl", 5*time.Minute)
	v.SetDefault("verifier.read_timeout", 10*time.Second)
	v.SetDefault("verifier.write_timeout", 10*time.Second)
	v.SetDefault("verifier.shutdown_grace", 10*time.Second)
	v.SetDefault("verifier.rate_limit", 60)
	v.SetDefault("verifier.rate_burst", 10)
	v.SetDefault("verifier.trusted_proxies", "")

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("auth.backend", BackendHosted)
	v.SetDefault("auth.jwt_signing_key", devSigningKey)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("store.backend", BackendHosted)
	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("audit.backend", BackendLog)
	v.SetDefault("audit.topic", "canvass.audit")
}

// ValidateCollector checks the sections the operator console depends on.
func (c Config) ValidateCollector() error {
	var errs []error
	switch c.Auth.Backend {
	case BackendHosted:
		errs = append(errs, requireHosted(c.Hosted, "auth")...)
	case BackendDirectory:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("auth: directory backend requires postgres.url"))
		}
		if !c.IsDevelopment() && c.Auth.JWTSigningKey == devSigningKey {
			errs = append(errs, errors.New("auth: jwt_signing_key must be set outside development"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth: unknown backend %q", c.Auth.Backend))
	}
	switch c.Store.Backend {
	case BackendHosted:
		errs = append(errs, requireHosted(c.Hosted, "store")...)
	case BackendPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("store: postgres backend requires postgres.url"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("store: unknown backend %q", c.Store.Backend))
	}
	switch c.Session.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("session: redis backend requires redis.url"))
		}
	default:
		errs = append(errs, fmt.Errorf("session: unknown backend %q", c.Session.Backend))
	}
	switch c.Audit.Backend {
	case BackendLog, BackendMemory:
	case BackendKafka:
		if len(c.Audit.Brokers) == 0 {
			errs = append(errs, errors.New("audit: kafka backend requires audit.brokers"))
		}
	default:
		errs = append(errs, fmt.Errorf("audit: unknown backend %q", c.Audit.Backend))
	}
	if c.Verifier.URL == "" {
		errs = append(errs, errors.New("verifier: url is required"))
	}
	return errors.Join(errs...)
}

// ValidateVerifier checks the sections the verification endpoint depends on.
func (c Config) ValidateVerifier() error {
	var errs []error
	if c.Verifier.Addr == "" {
		errs = append(errs, errors.New("verifier: addr is required"))
	}
	if c.Verifier.RateLimit < 0 || c.Verifier.RateBurst < 0 {
		errs = append(errs, errors.New("verifier: rate_limit and rate_burst must not be negative"))
	}
	switch c.Verifier.CacheBackend {
	case BackendMemory, "none":
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("verifier: redis cache requires redis.url"))
		}
	default:
		errs = append(errs, fmt.Errorf("verifier: unknown cache %q", c.Verifier.CacheBackend))
	}
	return errors.Join(errs...)
}

func requireHosted(h HostedConfig, section string) []error {
	var errs []error
	if h.URL == "" {
		errs = append(errs, fmt.Errorf("%s: hosted backend requires hosted.url", section))
	}
	if h.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s: hosted backend requires hosted.api_key", section))
	}
	return errs
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".canvass", "session.json")
	}
	return filepath.Join(home, ".canvass", "session.json")
}
