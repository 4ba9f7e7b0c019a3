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
	DataDir       string
	UploadDir     string
	JWTSecret     string
	SessionTTL    time.Duration
	StorageDriver string // "json", "sqlite" or "postgres"
	DBPath        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		JWTSecret:     getEnv("JWT_SECRET", "blueme-dev-secret"),
		SessionTTL:    time.Duration(getIntEnv("SESSION_TTL_HOURS", 24)) * time.Hour,
		StorageDriver: getEnv("STORAGE_DRIVER", "json"),
		DBPath:        getEnv("DB_PATH", "./blueme.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "blueme"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "blueme"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}
