package config

import "os"

type Config struct {
	Port      string
	DBDriver  string // mysql or sqlite
	DBDSN     string
	LogLevel  string
	LogFormat string // text or json
}

func Load() Config {
	return Config{
		Port:      envOr("PORT", "8000"),
		DBDriver:  envOr("DB_DRIVER", "mysql"),
		DBDSN:     envOr("DB_DSN", "admin:12345678@tcp(127.0.0.1:3306)/teamtrack?charset=utf8mb4&parseTime=True&loc=Local"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "text"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
