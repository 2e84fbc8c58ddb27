package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/eco2-team/backend/domains/json-masker/internal/constants"
)

// Default values (tune here for system-wide changes)
const (
	// Server
	DefaultGRPCPort    = 50051
	DefaultHTTPPort    = 8080
	DefaultMetricsPort = 9090

	// API
	DefaultMaxBodyBytes = 4 << 20 // 4MiB

	// Redis field source (disabled unless a URL is set)
	DefaultRedisFieldsKey      = "masking:fields"
	DefaultRedisPoolSize       = 10
	DefaultRedisMinIdleConns   = 0
	DefaultRedisPoolTimeoutMs  = 2000
	DefaultRedisReadTimeoutMs  = 1000
	DefaultRedisWriteTimeoutMs = 1000

	// JWT (API auth disabled unless a secret is set)
	DefaultJWTAlgorithm    = "HS256"
	DefaultJWTClockSkewSec = 5
)

type Config struct {
	// Masking
	MaskedFields string
	MaskChar     string

	GRPCPort     int
	HTTPPort     int
	MetricsPort  int
	MaxBodyBytes int64

	// Redis field source
	RedisURL            string
	RedisFieldsKey      string
	RedisPoolSize       int
	RedisMinIdleConns   int
	RedisPoolTimeoutMs  int
	RedisReadTimeoutMs  int
	RedisWriteTimeoutMs int

	// RabbitMQ sanitizer
	AMQPURL string

	// API bearer auth
	JWTSecretKey     string
	JWTAlgorithm     string
	JWTIssuer        string
	JWTAudience      string
	JWTClockSkewSec  int
	JWTRequiredScope string
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func Load() *Config {
	return &Config{
		MaskedFields: getEnv(constants.EnvMaskedFields, ""),
		MaskChar:     getEnv(constants.EnvMaskChar, constants.DefaultMaskChar),

		GRPCPort:     getEnvAsInt("MASK_GRPC_PORT", DefaultGRPCPort),
		HTTPPort:     getEnvAsInt("MASK_HTTP_PORT", DefaultHTTPPort),
		MetricsPort:  getEnvAsInt("MASK_METRICS_PORT", DefaultMetricsPort),
		MaxBodyBytes: int64(getEnvAsInt("MASK_MAX_BODY_BYTES", DefaultMaxBodyBytes)),

		RedisURL:            getEnv("MASK_REDIS_URL", ""),
		RedisFieldsKey:      getEnv("MASK_REDIS_FIELDS_KEY", DefaultRedisFieldsKey),
		RedisPoolSize:       getEnvAsInt("REDIS_POOL_SIZE", DefaultRedisPoolSize),
		RedisMinIdleConns:   getEnvAsInt("REDIS_MIN_IDLE_CONNS", DefaultRedisMinIdleConns),
		RedisPoolTimeoutMs:  getEnvAsInt("REDIS_POOL_TIMEOUT_MS", DefaultRedisPoolTimeoutMs),
		RedisReadTimeoutMs:  getEnvAsInt("REDIS_READ_TIMEOUT_MS", DefaultRedisReadTimeoutMs),
		RedisWriteTimeoutMs: getEnvAsInt("REDIS_WRITE_TIMEOUT_MS", DefaultRedisWriteTimeoutMs),

		AMQPURL: getEnv("MASK_AMQP_URL", ""),

		JWTSecretKey:     getEnv("MASK_API_SECRET_KEY", ""),
		JWTAlgorithm:     getEnv("MASK_API_ALGORITHM", DefaultJWTAlgorithm),
		JWTIssuer:        getEnv("MASK_API_ISSUER", ""),
		JWTAudience:      getEnv("MASK_API_AUDIENCE", ""),
		JWTClockSkewSec:  getEnvAsInt("MASK_API_CLOCK_SKEW_SEC", DefaultJWTClockSkewSec),
		JWTRequiredScope: getEnv("MASK_API_REQUIRED_SCOPE", ""),
	}
}

// AuthEnabled reports whether the HTTP API requires a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecretKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
