package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	minSignedURLTTL = 1
	maxSignedURLTTL = 60

	minAIMaxDimension = 256
	maxAIMaxDimension = 2048
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	StorageTimeout time.Duration

	RedisAddr     string
	RedisPassword string

	RabbitMQURL       string
	WorkerConcurrency int
	MetricsAddr       string

	JWTSecret              string
	JWTTTL                 time.Duration
	AuthRateLimitPerMinute int

	SignedURLTTL time.Duration

	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	AIMaxDimension    int
	AITimeout         time.Duration
	AIInputCostPer1K  float64
	AIOutputCostPer1K float64
}

var requiredKeys = []string{
	"MARIADB_DSN",
	"MARIADB_MAX_OPEN_CONN",
	"MARIADB_MAX_IDLE_CONNS",
	"MARIADB_CONN_MAX_LIFETIME",
	"SERVER_PORT",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
	"RABBITMQ_URL",
	"JWT_SECRET",
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	return &Settings{
		MariaDBDSN:      v.GetString("MARIADB_DSN"),
		MaxOpenConns:    v.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    v.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(v.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      v.GetInt("SERVER_PORT"),

		MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    v.IsSet("MINIO_USE_SSL") && v.GetBool("MINIO_USE_SSL"),
		MinioBucket:    stringOr(v, "MINIO_BUCKET", "images"),
		StorageTimeout: time.Duration(intOr(v, "STORAGE_TIMEOUT_SECONDS", 45)) * time.Second,

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		WorkerConcurrency: positiveOr(intOr(v, "WORKER_CONCURRENCY", 8), 8),
		MetricsAddr:       stringOr(v, "METRICS_ADDR", ":9091"),

		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTTTL:                 time.Duration(positiveOr(intOr(v, "JWT_TTL_MINUTES", 60), 60)) * time.Minute,
		AuthRateLimitPerMinute: positiveOr(intOr(v, "AUTH_RATE_LIMIT_PER_MINUTE", 10), 10),

		SignedURLTTL: time.Duration(clamp(intOr(v, "SIGNED_URL_TTL_MINUTES", 10), minSignedURLTTL, maxSignedURLTTL)) * time.Minute,

		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       stringOr(v, "OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     stringOr(v, "OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AIMaxDimension:    clamp(intOr(v, "AI_MAX_DIMENSION", 1024), minAIMaxDimension, maxAIMaxDimension),
		AITimeout:         time.Duration(positiveOr(intOr(v, "AI_TIMEOUT_SECONDS", 60), 60)) * time.Second,
		AIInputCostPer1K:  floatOr(v, "AI_INPUT_COST_PER_1K", 0.00015),
		AIOutputCostPer1K: floatOr(v, "AI_OUTPUT_COST_PER_1K", 0.0006),
	}, nil
}

func stringOr(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}

func intOr(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return def
	}
	return v.GetInt(key)
}

func floatOr(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return def
	}
	return v.GetFloat64(key)
}

func positiveOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
