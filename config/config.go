// Package config loads runtime settings from the environment.
//
// A .env file in the working directory is read first when it exists; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	StorageBackendDisk       = "disk"
	StorageBackendCloudinary = "cloudinary"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"photoshare"`

	SessionSecret  string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	RedisURL       string        `env:"REDIS_URL"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"disk"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./images"`
	CloudinaryURL  string `env:"CLOUDINARY_URL"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"server.log"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LoginRateLimit int      `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	switch c.StorageBackend {
	case StorageBackendDisk:
	case StorageBackendCloudinary:
		if c.CloudinaryURL == "" {
			return errors.New("config: CLOUDINARY_URL is required when STORAGE_BACKEND=cloudinary")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("config: LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}
