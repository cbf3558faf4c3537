package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Agenda    AgendaConfig
	Layout    LayoutConfig
	Bootstrap BootstrapConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AgendaConfig governs agenda caching, prewarming, invalidation workers and calendar feeds.
type AgendaConfig struct {
	CacheEnabled        bool
	CacheTTL            time.Duration
	PrewarmCron         string
	WeekStart           string
	InvalidationWorkers int
	InvalidationRetries int
	FeedSecret          string
	FeedTTL             time.Duration
	FeedPastDays        int
	FeedFutureDays      int
}

// LayoutConfig holds the default grid constants for agenda layouts.
// ProfilesFile, when set, points at a YAML file with named profiles.
type LayoutConfig struct {
	DayWindowStart  string
	DayWindowEnd    string
	PixelsPerMinute float64
	BaseZ           int
	LaneGap         float64
	ProfilesFile    string
}

// BootstrapConfig seeds the first administrator on an empty users table.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Agenda = AgendaConfig{
		CacheEnabled:        v.GetBool("ENABLE_AGENDA_CACHE"),
		CacheTTL:            parseDuration(v.GetString("AGENDA_CACHE_TTL"), 5*time.Minute),
		PrewarmCron:         strings.TrimSpace(v.GetString("AGENDA_PREWARM_CRON")),
		WeekStart:           normalizeWeekStart(v.GetString("AGENDA_WEEK_START")),
		InvalidationWorkers: v.GetInt("AGENDA_INVALIDATION_WORKERS"),
		InvalidationRetries: v.GetInt("AGENDA_INVALIDATION_RETRIES"),
		FeedSecret:          v.GetString("AGENDA_FEED_SECRET"),
		FeedTTL:             parseDuration(v.GetString("AGENDA_FEED_TTL"), 90*24*time.Hour),
		FeedPastDays:        v.GetInt("AGENDA_FEED_PAST_DAYS"),
		FeedFutureDays:      v.GetInt("AGENDA_FEED_FUTURE_DAYS"),
	}
	if cfg.Agenda.FeedSecret == "" {
		cfg.Agenda.FeedSecret = cfg.JWT.Secret
	}

	cfg.Layout = LayoutConfig{
		DayWindowStart:  v.GetString("LAYOUT_DAY_WINDOW_START"),
		DayWindowEnd:    v.GetString("LAYOUT_DAY_WINDOW_END"),
		PixelsPerMinute: v.GetFloat64("LAYOUT_PIXELS_PER_MINUTE"),
		BaseZ:           v.GetInt("LAYOUT_BASE_Z"),
		LaneGap:         v.GetFloat64("LAYOUT_LANE_GAP"),
		ProfilesFile:    v.GetString("LAYOUT_PROFILES_FILE"),
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminEmail:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
		AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		AdminName:     v.GetString("BOOTSTRAP_ADMIN_NAME"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "clinic_agenda")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "clinic-agenda-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_AGENDA_CACHE", true)
	v.SetDefault("AGENDA_CACHE_TTL", "5m")
	v.SetDefault("AGENDA_PREWARM_CRON", "0 5 * * *")
	v.SetDefault("AGENDA_WEEK_START", "monday")
	v.SetDefault("AGENDA_INVALIDATION_WORKERS", 1)
	v.SetDefault("AGENDA_INVALIDATION_RETRIES", 3)
	v.SetDefault("AGENDA_FEED_SECRET", "")
	v.SetDefault("AGENDA_FEED_TTL", "2160h")
	v.SetDefault("AGENDA_FEED_PAST_DAYS", 7)
	v.SetDefault("AGENDA_FEED_FUTURE_DAYS", 60)

	v.SetDefault("LAYOUT_DAY_WINDOW_START", "06:00")
	v.SetDefault("LAYOUT_DAY_WINDOW_END", "23:00")
	v.SetDefault("LAYOUT_PIXELS_PER_MINUTE", 1.5)
	v.SetDefault("LAYOUT_BASE_Z", 10)
	v.SetDefault("LAYOUT_LANE_GAP", 0.02)
	v.SetDefault("LAYOUT_PROFILES_FILE", "")

	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_ADMIN_NAME", "Administrator")
}

func normalizeWeekStart(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sunday":
		return "sunday"
	default:
		return "monday"
	}
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
