package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port          string
	GinMode       string
	DatabaseURL   string
	DBLogLevel    string
	CorsOrigins   []string
	CloudinaryURL string
	UploadFolder  string
	JWT           JWTConfig
}

// Load reads the configuration from the environment. Call it after the
// .env file has been loaded.
func Load() (*Config, error) {
	jwtConfig, err := loadJWTConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DatabaseURL:   databaseURL(),
		DBLogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
		CorsOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		UploadFolder:  getEnv("UPLOAD_FOLDER", "blog"),
		JWT:           jwtConfig,
	}

	return cfg, nil
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "blog"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
