package config

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session storage backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type Config struct {
	Env  string
	Port int

	Backend BackendConfig
	Redis   RedisConfig
	Session SessionConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// BackendConfig points the gateway at the marketplace REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the per-browser session namespace.
type SessionConfig struct {
	Store        string
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
	KeySecret    string
	KeyPrefix    string
	IdleEviction time.Duration
}

// AuthConfig tunes startup validation of cached sessions.
type AuthConfig struct {
	InitWait time.Duration
}

// CatalogConfig governs caching of public catalog reads.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	baseURL, err := normalizeBaseURL(v.GetString("BACKEND_BASE_URL"))
	if err != nil {
		return nil, err
	}
	cfg.Backend = BackendConfig{
		BaseURL: baseURL,
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE")))
	if store != SessionStoreMemory {
		store = SessionStoreRedis
	}
	cfg.Session = SessionConfig{
		Store:        store,
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		KeySecret:    v.GetString("SESSION_KEY_SECRET"),
		KeyPrefix:    v.GetString("SESSION_KEY_PREFIX"),
		IdleEviction: parseDuration(v.GetString("SESSION_IDLE_EVICTION"), 30*time.Minute),
	}

	cfg.Auth = AuthConfig{
		InitWait: parseDuration(v.GetString("AUTH_INIT_WAIT"), 2*time.Second),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("CATALOG_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_STORE", SessionStoreRedis)
	v.SetDefault("SESSION_COOKIE_NAME", "coursehub_sid")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_KEY_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_KEY_PREFIX", "coursehub:session")
	v.SetDefault("SESSION_IDLE_EVICTION", "30m")

	v.SetDefault("AUTH_INIT_WAIT", "2s")

	v.SetDefault("CATALOG_CACHE_ENABLED", true)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)
}

// normalizeBaseURL strips a trailing slash and an "/api" suffix since endpoint paths
// already carry the /api prefix.
func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	trimmed = strings.TrimSuffix(trimmed, "/api")
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("BACKEND_BASE_URL must be an absolute URL")
	}
	return trimmed, nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
