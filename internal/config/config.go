package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV,default=development"`
	Port        int    `env:"PORT,default=9090"`
	MetricsPort int    `env:"METRICS_PORT,default=9091"`

	DatabaseURL      string `env:"DATABASE_CONNECTION_POOL_URL,required"`
	DatabaseMaxConns int    `env:"DATABASE_MAX_CONNS,default=16"`

	GoogleCredentialsJSON string `env:"GOOGLE_APPLICATION_CREDENTIALS_CONTENT"`
	FirebaseWebAPIKey     string `env:"FIREBASE_WEB_API_KEY,required"`
	FirebaseProjectID     string `env:"FIREBASE_PROJECT_ID,required"`

	StorageBucket string `env:"STORAGE_BUCKET,required"`
	ImageMaxBytes int64  `env:"IMAGE_MAX_BYTES,default=2097152"`

	SecureCookies bool `env:"SECURE_COOKIES,default=true"`
}

// Load reads an optional .env file and decodes the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return decode()
}

func decode() (Config, error) {
	var cfg Config
	err := envdecode.Decode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.ImageMaxBytes <= 0 {
		return cfg, fmt.Errorf("IMAGE_MAX_BYTES must be positive, got %d", cfg.ImageMaxBytes)
	}
	return cfg, nil
}
