package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	DBPath        string
	BackendURL    string
	BackendAPIKey string
	SyncInterval  time.Duration
	CORSOrigins   string
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:          GetEnv("PORT", "3000"),
		Env:           GetEnv("ENV", "development"),
		DBPath:        GetEnv("DB_PATH", "./data/tempo.db"),
		BackendURL:    GetEnv("BACKEND_URL", ""),
		BackendAPIKey: GetEnv("BACKEND_API_KEY", ""),
		SyncInterval:  GetEnvDuration("SYNC_INTERVAL", 2*time.Minute),
		CORSOrigins:   GetEnv("CORS_ORIGINS", "*"),
	}

	if AppConfig.BackendURL == "" {
		log.Fatal("BACKEND_URL is required")
	}
	if AppConfig.BackendAPIKey == "" {
		log.Fatal("BACKEND_API_KEY is required")
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
