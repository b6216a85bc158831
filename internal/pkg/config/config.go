package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// PublicURL is the externally visible origin used in mailed links,
	// e.g. https://api.devcamper.io. Empty falls back to the request host.
	PublicURL string `env:"PUBLIC_URL"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Geocoder  GeocoderConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig

	AggregateWorkers int `env:"AGGREGATE_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=devcamper"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	JWTExpire    time.Duration `env:"JWT_EXPIRE, default=720h"`
	CookieExpire int           `env:"JWT_COOKIE_EXPIRE, default=30"`
}

// CookieTTL is the session cookie lifetime; JWT_COOKIE_EXPIRE is in days.
func (a AuthConfig) CookieTTL() time.Duration {
	return time.Duration(a.CookieExpire) * 24 * time.Hour
}

// SMTPConfig is optional; without a host, mail is written to the log.
type SMTPConfig struct {
	Host      string `env:"SMTP_HOST"`
	Port      int    `env:"SMTP_PORT, default=587"`
	Username  string `env:"SMTP_EMAIL"`
	Password  string `env:"SMTP_PASSWORD"`
	FromEmail string `env:"FROM_EMAIL, default=noreply@devcamper.io"`
	FromName  string `env:"FROM_NAME,  default=DevCamper"`
}

type GeocoderConfig struct {
	APIKey   string        `env:"GEOCODER_API_KEY"`
	CacheTTL time.Duration `env:"GEOCODE_CACHE_TTL, default=168h"`
}

type UploadConfig struct {
	Path    string `env:"FILE_UPLOAD_PATH, default=./public/uploads"`
	MaxSize int64  `env:"MAX_FILE_UPLOAD,  default=1000000"`
}

type RateLimitConfig struct {
	Max    int64         `env:"RATE_LIMIT_MAX,    default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=10m"`
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.AggregateWorkers < 1 {
		return nil, fmt.Errorf("config: AGGREGATE_WORKERS must be at least 1")
	}
	if cfg.RateLimit.Max < 1 || cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("config: rate limit needs a positive RATE_LIMIT_MAX and RATE_LIMIT_WINDOW")
	}
	if cfg.PublicURL != "" {
		u, err := url.Parse(cfg.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("config: PUBLIC_URL must be an absolute http(s) URL, got %q", cfg.PublicURL)
		}
		cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	}
	return &cfg, nil
}
