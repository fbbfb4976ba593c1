package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMinIO  = "minio"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Identity  IdentityConfig
	Session   SessionConfig
	Store     StoreConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// IdentityConfig points at the identity service. Issuer enables signature
// verification of access tokens for /session/me.
type IdentityConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Issuer   string
	ClientID string
	Insecure bool
}

type SessionConfig struct {
	StorageKey  string
	RefreshSkew time.Duration
}

type StoreConfig struct {
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return net.JoinHostPort(r.Host, r.Port) }

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type RateLimitConfig struct {
	Enabled bool
	// Backend is "memory" (token bucket per process) or "redis" (fixed window).
	Backend string
	RPS     float64
	Burst   int
	Window  time.Duration
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables and an optional
// .env file (DOTENV_PATH, default ".env").
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DOTENV_PATH", ".env")
	_ = godotenv.Load(v.GetString("DOTENV_PATH"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "*")
	v.SetDefault("IDP_BASE_URL", "https://gfgp.ai/api/idp")
	v.SetDefault("IDP_TIMEOUT", 15)
	v.SetDefault("SESSION_STORAGE_KEY", "idp_auth_session")
	v.SetDefault("SESSION_REFRESH_SKEW", 300)
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PREFIX", "authwidget:")
	v.SetDefault("REDIS_TIMEOUT", 5)
	v.SetDefault("MONGODB_DATABASE", "authwidget")
	v.SetDefault("MONGODB_COLLECTION", "sessions")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MINIO_BUCKET", "authwidget")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_BACKEND", "memory")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW", 1)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			AllowedOrigins: splitList(v.GetString("SERVER_ALLOWED_ORIGINS")),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Identity: IdentityConfig{
			BaseURL:  strings.TrimRight(v.GetString("IDP_BASE_URL"), "/"),
			Timeout:  time.Duration(v.GetInt("IDP_TIMEOUT")) * time.Second,
			Issuer:   v.GetString("OIDC_ISSUER"),
			ClientID: v.GetString("OIDC_CLIENT_ID"),
			Insecure: v.GetBool("OIDC_INSECURE"),
		},
		Session: SessionConfig{
			StorageKey:  v.GetString("SESSION_STORAGE_KEY"),
			RefreshSkew: time.Duration(v.GetInt("SESSION_REFRESH_SKEW")) * time.Second,
		},
		Store: StoreConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
			Timeout:  time.Duration(v.GetInt("REDIS_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			Backend: strings.ToLower(v.GetString("RATE_LIMIT_BACKEND")),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
			Window:  time.Duration(v.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Identity.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("IDP_BASE_URL %q is not an absolute URL", c.Identity.BaseURL)
	}
	if c.Session.StorageKey == "" {
		return fmt.Errorf("SESSION_STORAGE_KEY must not be empty")
	}
	if c.Session.RefreshSkew < 0 {
		return fmt.Errorf("SESSION_REFRESH_SKEW must not be negative")
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo store")
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.RateLimit.Backend != "memory" && c.RateLimit.Backend != "redis" {
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
