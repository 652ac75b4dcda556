package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	LogLevel string
	LogJSON  bool

	CORSAllowedOrigins []string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string
	DBAutoMigrate bool

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BadgeLockPrefix      string
	BadgeLockTTL         time.Duration
	BadgeLockWait        time.Duration
	BadgeRescanQueueName string

	LeaderboardLimit int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		AppEnv:             getEnv("APP_ENV", "dev"),
		APIPort:            getEnv("API_PORT", "8080"),
		JWTKey:             []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:             time.Duration(getEnvAsInt("JWT_EXPIRATION_MINUTES", 720)) * time.Minute,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnvAsBool("LOG_JSON", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "gamification_db"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", true),
		RedisEnabled:       getEnvAsBool("REDIS_ENABLED", true),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),

		BadgeLockPrefix:      getEnv("BADGE_LOCK_PREFIX", "badge_eval_lock:"),
		BadgeLockTTL:         time.Duration(getEnvAsInt("BADGE_LOCK_TTL_SECONDS", 30)) * time.Second,
		BadgeLockWait:        time.Duration(getEnvAsInt("BADGE_LOCK_WAIT_MS", 5000)) * time.Millisecond,
		BadgeRescanQueueName: getEnv("BADGE_RESCAN_QUEUE_NAME", "badge_rescan_queue"),

		LeaderboardLimit: getEnvAsInt("LEADERBOARD_LIMIT", 50),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
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

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
