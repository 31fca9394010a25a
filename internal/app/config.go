package app

import (
	"github.com/sahanw/arogya-backend/internal/platform/env"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	MetricsAddr string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        env.GetEnv("PORT", "8080", log),
		MetricsAddr: env.GetEnv("METRICS_ADDR", "", log),
		Environment: env.GetEnv("APP_ENV", "development", log),
		Version:     env.GetEnv("APP_VERSION", "dev", log),
	}
}
