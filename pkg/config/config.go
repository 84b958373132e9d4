package config

import (
	"errors"
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

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Uploads      UploadsConfig
	Fetcher      FetcherConfig
	Comprobantes ComprobantesConfig
	Folio        FolioConfig
	Classifier   ClassifierConfig
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
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls document ingestion validation and storage.
type UploadsConfig struct {
	StorageDir        string
	MaxFileSizeBytes  int64
	AllowedExtensions []string
	HashAlgorithm     string
	RequireSignature  bool
	SignedURLSecret   string
	SignedURLTTL      time.Duration
}

// FetcherConfig governs external URL ingestion.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// ComprobantesConfig tunes asynchronous XML comprobante rendering.
type ComprobantesConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
	CleanupInterval   time.Duration
	CleanupTTL        time.Duration
}

// FolioConfig governs folio index caching.
type FolioConfig struct {
	CacheTTL time.Duration
}

// ClassifierConfig selects the classification strategy.
type ClassifierConfig struct {
	Strategy string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:        v.GetString("UPLOADS_STORAGE_DIR"),
		MaxFileSizeBytes:  maxUploadSize,
		AllowedExtensions: splitAndTrim(v.GetString("UPLOADS_ALLOWED_EXTENSIONS")),
		HashAlgorithm:     strings.ToLower(v.GetString("UPLOADS_HASH_ALGORITHM")),
		RequireSignature:  v.GetBool("UPLOADS_REQUIRE_SIGNATURE"),
		SignedURLSecret:   v.GetString("UPLOADS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("UPLOADS_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.Fetcher = FetcherConfig{
		UserAgent: v.GetString("FETCHER_USER_AGENT"),
		Timeout:   parseDuration(v.GetString("FETCHER_TIMEOUT"), 60*time.Second),
	}

	cfg.Comprobantes = ComprobantesConfig{
		Enabled:           v.GetBool("ENABLE_COMPROBANTES"),
		WorkerConcurrency: v.GetInt("COMPROBANTES_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("COMPROBANTES_WORKER_RETRIES"),
		CleanupInterval:   parseDuration(v.GetString("COMPROBANTES_CLEANUP_INTERVAL"), time.Hour),
		CleanupTTL:        parseDuration(v.GetString("COMPROBANTES_CLEANUP_TTL"), 30*24*time.Hour),
	}

	cfg.Folio = FolioConfig{
		CacheTTL: parseDuration(v.GetString("FOLIO_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Classifier = ClassifierConfig{
		Strategy: v.GetString("CLASSIFIER_STRATEGY"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gestor_documental")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "gestor-documental")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_EXTENSIONS", ".pdf,.docx,.xlsx,.png,.jpg,.trd,.ccd,.zip")
	v.SetDefault("UPLOADS_HASH_ALGORITHM", "md5")
	v.SetDefault("UPLOADS_REQUIRE_SIGNATURE", false)
	v.SetDefault("UPLOADS_SIGNED_URL_SECRET", "dev_uploads_secret")
	v.SetDefault("UPLOADS_SIGNED_URL_TTL", "30m")

	v.SetDefault("FETCHER_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("FETCHER_TIMEOUT", "60s")

	v.SetDefault("ENABLE_COMPROBANTES", true)
	v.SetDefault("COMPROBANTES_WORKER_CONCURRENCY", 1)
	v.SetDefault("COMPROBANTES_WORKER_RETRIES", 3)
	v.SetDefault("COMPROBANTES_CLEANUP_INTERVAL", "1h")
	v.SetDefault("COMPROBANTES_CLEANUP_TTL", "720h")

	v.SetDefault("FOLIO_CACHE_TTL", "5m")

	v.SetDefault("CLASSIFIER_STRATEGY", "rules")
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
