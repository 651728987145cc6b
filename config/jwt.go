package config

import (
	"time"
)

const (
	defaultJWTSecret        = "your-secret-key-change-this-in-production"
	defaultJWTRefreshSecret = "your-refresh-secret-key-change-this-in-production"
)

type JWTConfig struct {
	Secret            []byte
	Expiration        time.Duration
	RefreshSecret     []byte
	RefreshExpiration time.Duration
}

func loadJWTConfig() (JWTConfig, error) {
	expiration, err := getDuration("JWT_EXPIRATION", 15*time.Minute)
	if err != nil {
		return JWTConfig{}, err
	}
	refreshExpiration, err := getDuration("JWT_REFRESH_EXPIRATION", 7*24*time.Hour)
	if err != nil {
		return JWTConfig{}, err
	}

	return JWTConfig{
		Secret:            []byte(getEnv("JWT_SECRET", defaultJWTSecret)),
		Expiration:        expiration,
		RefreshSecret:     []byte(getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret)),
		RefreshExpiration: refreshExpiration,
	}, nil
}
