package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	DBDriver                string
	PostgresConnStr         string
	SQLitePath              string
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
	JWTSecret               string
	MetricsPort             string
	RedisAddr               string
	APIBaseURL              string
	UploadDir               string
	SessionTTL              time.Duration
	SearchDebounce          time.Duration
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "5000"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DBDriver:                strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:              getEnv("SQLITE_PATH", "social.db"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		MetricsPort:             getEnv("METRICS_PORT", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		APIBaseURL:              getEnv("API_BASE_URL", "http://localhost:5000/api"),
		UploadDir:               getEnv("UPLOAD_DIR", "uploads"),
		SessionTTL:              getDuration("SESSION_TTL", 24*time.Hour),
		SearchDebounce:          getDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
