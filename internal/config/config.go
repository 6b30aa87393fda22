package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	AppId       string

	MongoURI string
	DBName   string

	// Customer app destination store. Type is "mongodb" or "postgres".
	CustomerAppDBType   string
	CustomerAppMongoURI string
	CustomerAppDBName   string
	CustomerAppPgDSN    string

	// Cross-app relay knobs
	DrainIntervalSeconds int
	DrainBatchSize       int
	MaxDeliveryRetries   int

	// Sync orchestrator knobs
	DefaultSyncBatchSize int
	SyncHistoryLimit     int
	SyncRunTimeoutSecs   int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-merchant"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "go-merchant"),

		CustomerAppDBType:   getEnv("CUSTOMER_APP_DB_TYPE", "mongodb"),
		CustomerAppMongoURI: getEnv("CUSTOMER_APP_MONGO_URI", "mongodb://localhost:27017"),
		CustomerAppDBName:   getEnv("CUSTOMER_APP_DB_NAME", "customer-app"),
		CustomerAppPgDSN:    getEnv("CUSTOMER_APP_PG_DSN", ""),

		DrainIntervalSeconds: getEnvInt("CROSS_APP_DRAIN_INTERVAL_SECONDS", 5),
		DrainBatchSize:       getEnvInt("CROSS_APP_DRAIN_BATCH_SIZE", 10),
		MaxDeliveryRetries:   getEnvInt("CROSS_APP_MAX_RETRIES", 3),

		DefaultSyncBatchSize: getEnvInt("SYNC_DEFAULT_BATCH_SIZE", 100),
		SyncHistoryLimit:     getEnvInt("SYNC_HISTORY_LIMIT", 50),
		SyncRunTimeoutSecs:   getEnvInt("SYNC_RUN_TIMEOUT_SECONDS", 120),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
