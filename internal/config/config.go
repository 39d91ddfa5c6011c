package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	StoreDriver        string
	DatabaseURL        string
	DatabaseName       string
	LogLevel           string
	LogFilePath        string
	Environment        string
	CorsAllowedOrigins []string

	// DotEnvLoaded is false when no .env file was found.
	DotEnvLoaded bool
}

// Load reads .env when present, then the process environment. Empty
// variables count as unset.
func Load() *Config {
	dotEnvErr := godotenv.Load()

	return &Config{
		HTTPPort:           getEnv("PORT", getEnv("HTTP_PORT", "8000")),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseName:       getEnv("DATABASE_NAME", ""),
		LogLevel:           strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFilePath:        getEnv("LOG_FILE_PATH", ""),
		Environment:        getEnv("APP_ENV", "development"),
		CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DotEnvLoaded:       dotEnvErr == nil,
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
