package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DBPath   string
	LogLevel string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:   getEnv("DB_PATH", "tracker.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
