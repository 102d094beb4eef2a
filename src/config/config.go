package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Data file paths
	PlanComptablePath string

	// Store policy
	SessionRetention int // most-recent sessions kept, 0 disables pruning

	// Request limits
	MaxBodyBytes   int64
	RateLimitEvery time.Duration
	RateLimitBurst int

	// Frontend URL for CORS
	FrontendBaseURL string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// Try the current directory first, then the parent (common when the
	// process runs from /backend).
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}
	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxBodyBytesStr := getEnv("MAX_BODY_BYTES", "10485760") // 10MB default
	maxBodyBytes, err := strconv.ParseInt(maxBodyBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_BODY_BYTES format '%s'. Using default 10MB. Error: %v", maxBodyBytesStr, err)
		maxBodyBytes = 10 * 1024 * 1024
	}

	rateLimitRPS := getEnvAsInt("RATE_LIMIT_RPS", 10)
	if rateLimitRPS <= 0 {
		rateLimitRPS = 10
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./fiscasync.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		PlanComptablePath: getEnv("PLAN_COMPTABLE_PATH", "data/plan_syscohada.yaml"),

		SessionRetention: getEnvAsInt("SESSION_RETENTION", 20),

		MaxBodyBytes:   maxBodyBytes,
		RateLimitEvery: time.Second / time.Duration(rateLimitRPS),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),

		FrontendBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, PlanPath=%s, Retention=%d",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.PlanComptablePath, Cfg.SessionRetention)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}
