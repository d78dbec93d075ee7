package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Schedule ScheduleConfig
	Bus      BusConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	JobLogFilePath     string
	CorsAllowedOrigins string
	OtelEnabled        bool
	ServiceName        string
}

type DatabaseConfig struct {
	Connection string
}

type ScheduleConfig struct {
	Timezone             string
	CutoffHour           int
	ExcludedWeekday      string
	PausePoolSize        int
	PauseRowTimeout      time.Duration
	ReactivationCronSpec string
	IdempotencyTTL       time.Duration
}

type BusConfig struct {
	NatsURL  string
	RedisURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			JobLogFilePath:     getEnv("JOB_LOG_FILE_PATH", "logs/jobs.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "delivery-scheduler"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Schedule: ScheduleConfig{
			Timezone:             getEnv("OPERATING_TIMEZONE", "Asia/Kolkata"),
			CutoffHour:           getEnvAsInt("DELIVERY_CUTOFF_HOUR", 20),
			ExcludedWeekday:      getEnv("DELIVERY_EXCLUDED_WEEKDAY", "sunday"),
			PausePoolSize:        getEnvAsInt("PAUSE_WORKER_POOL_SIZE", 8),
			PauseRowTimeout:      time.Duration(getEnvAsInt("PAUSE_ROW_TIMEOUT_SECONDS", 10)) * time.Second,
			ReactivationCronSpec: getEnv("REACTIVATION_CRON_SPEC", "*/15 * * * *"),
			IdempotencyTTL:       time.Duration(getEnvAsInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		},
		Bus: BusConfig{
			NatsURL:  getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}
}

// Location resolves the operating timezone, falling back to UTC for an unknown name
func (s ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("[WARN] Unknown OPERATING_TIMEZONE %q, using UTC", s.Timezone)
		return time.UTC
	}
	return loc
}

// Weekday parses the excluded delivery weekday, Sunday when unrecognised
func (s ScheduleConfig) Weekday() time.Weekday {
	name := strings.ToLower(strings.TrimSpace(s.ExcludedWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d
		}
	}
	return time.Sunday
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
