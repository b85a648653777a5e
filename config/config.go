package config

import (
	"time"

	"train-booking-backend/utils"
)

type Config struct {
	Port            string
	GinMode         string
	CORSOrigins     string
	LogLevel        string
	LogFormat       string
	SeedData        bool
	ShutdownTimeout time.Duration

	DBSlowThreshold time.Duration
	DBLogLevel      string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
}

// Load reads the configuration from the environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() Config {
	return Config{
		Port:            utils.EnvOrDefault("PORT", "8080"),
		GinMode:         utils.EnvOrDefault("GIN_MODE", ""),
		CORSOrigins:     utils.EnvOrDefault("CORS_ORIGINS", "*"),
		LogLevel:        utils.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       utils.EnvOrDefault("LOG_FORMAT", "text"),
		SeedData:        utils.EnvBool("SEED_DATA", true),
		ShutdownTimeout: utils.EnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		DBSlowThreshold: utils.EnvDuration("DB_SLOW_THRESHOLD", time.Second),
		DBLogLevel:      utils.EnvOrDefault("DB_LOG_LEVEL", "warn"),
		DBMaxOpenConns:  utils.EnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  utils.EnvInt("DB_MAX_IDLE_CONNS", 10),
	}
}
