package configs

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret dikembalikan Validate jika JWT_SECRET kosong di luar mode test.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// testJWTSecret hanya dipakai saat GO_ENV=test.
const testJWTSecret = "test-secret"

type Config struct {
	Env      string
	AppPort  string
	DBDriver string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret     string
	SessionTTL    time.Duration
	SessionCookie string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	CORSOrigins  string
	RateLimitMax int

	LogDir    string
	LogStdout bool
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	env := os.Getenv("GO_ENV")
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" && env == "test" {
		jwtSecret = testJWTSecret
	}

	return Config{
		Env:      env,
		AppPort:  getString("APP_PORT", "3004"),
		DBDriver: strings.ToLower(getString("DB_DRIVER", "postgres")),

		DBHost:     getString("DB_HOST", "localhost"),
		DBPort:     getInt("DB_PORT", 5432),
		DBUser:     getString("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getString("DB_NAME", "taskboard"),
		DBNameTest: getString("DB_NAME_TEST", "taskboard_test"),
		DBSSLMode:  getString("DB_SSLMODE", "disable"),

		RedisHost:     getString("REDIS_HOST", "localhost"),
		RedisPort:     getInt("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		CacheTTL:      getDuration("CACHE_TTL", time.Hour),

		JWTSecret:     jwtSecret,
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		SessionCookie: getString("SESSION_COOKIE", "session"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getString("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAITimeout: getDuration("OPENAI_TIMEOUT", 30*time.Second),

		CORSOrigins:  getString("CORS_ORIGINS", "*"),
		RateLimitMax: getInt("RATE_LIMIT_MAX", 100),

		LogDir:    getString("LOG_DIR", "logs"),
		LogStdout: getBool("LOG_STDOUT", false),
	}
}

// Validate memeriksa nilai yang wajib ada sebelum server dijalankan.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration menerima format time.ParseDuration ("90s", "2h").
func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
