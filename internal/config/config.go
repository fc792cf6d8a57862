package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Config holds object storage settings for AWS S3 (or any S3 endpoint reachable through the AWS SDK).
type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
}

// StorageConfig selects the object storage backend.
// Driver is either "minio" (default) or "s3".
type StorageConfig struct {
	Driver string
	MinIO  MinIOConfig
	S3     S3Config
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// StreamConfig tunes the download/stream path.
type StreamConfig struct {
	// OpenTimeout bounds metadata lookup, stat request and stream open. Streaming itself is unbounded.
	OpenTimeout time.Duration
	// ChunkSize is the read buffer used per stream.
	ChunkSize int
	// OpenRetries is the maximum number of attempts for the stat request and stream open.
	OpenRetries int
	// StrictRange enables full single-range parsing; malformed headers are then ignored.
	StrictRange bool
}

// CacheConfig configures the in-process file metadata cache. Size 0 disables it.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// BodyLimit is the maximum request body size in bytes (uploads included).
	BodyLimit int
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Stream   StreamConfig
	Cache    CacheConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:   getEnv("APP_HOST", "localhost:8080"),
		Port:      getEnv("PORT", "8080"),
		BodyLimit: getEnvInt("BODY_LIMIT_BYTES", 100<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "minio"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", ""),
				Region:    getEnv("MINIO_REGION", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			S3: S3Config{
				Endpoint:     getEnv("S3_ENDPOINT", ""),
				Region:       getEnv("AWS_REGION", "us-east-1"),
				AccessKey:    getEnv("AWS_ACCESS_KEY", ""),
				SecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Bucket:       getEnv("S3_BUCKET_NAME", ""),
				UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),
			},
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Stream: StreamConfig{
			OpenTimeout: getEnvDuration("STREAM_OPEN_TIMEOUT", 10*time.Second),
			ChunkSize:   getEnvInt("STREAM_CHUNK_SIZE", 64*1024),
			OpenRetries: getEnvInt("STREAM_OPEN_RETRIES", 3),
			StrictRange: getEnvBool("STREAM_STRICT_RANGE", false),
		},
		Cache: CacheConfig{
			Size: getEnvInt("FILE_CACHE_SIZE", 0),
			TTL:  getEnvDuration("FILE_CACHE_TTL", time.Minute),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("TZ", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("30s", "24h").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
