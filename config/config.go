package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	BackendNone     = "none"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT"        default:":8081"`
	GrpcPort        string        `envconfig:"GRPC_PORT"        default:":50051"`
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	CatalogDir      string        `envconfig:"CATALOG_DIR"      default:"."`
	CatalogFile     string        `envconfig:"CATALOG_FILE"     default:"products.csv"`
	SnapshotBackend string        `envconfig:"SNAPSHOT_BACKEND" default:"none"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"       default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB"         default:"0"`
	RedisKeyPrefix  string        `envconfig:"REDIS_KEY_PREFIX" default:"catalog"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

var (
	config Config
	once   sync.Once
)

// LoadConfig reads .env (if present) and the environment once per process and
// exits on invalid configuration.
func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Load()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, CatalogDir=%s, CatalogFile=%s, SnapshotBackend=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.CatalogDir, config.CatalogFile, config.SnapshotBackend)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set")
		}
	})
	return &config
}

// Load processes the environment without caching.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.SnapshotBackend = strings.ToLower(strings.TrimSpace(c.SnapshotBackend))
	if c.SnapshotBackend == "" {
		c.SnapshotBackend = BackendNone
	}

	switch c.SnapshotBackend {
	case BackendNone:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SNAPSHOT_BACKEND=%s", BackendPostgres)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SNAPSHOT_BACKEND=%s", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q (want %s, %s or %s)", c.SnapshotBackend, BackendNone, BackendPostgres, BackendRedis)
	}

	if c.CatalogFile == "" {
		return fmt.Errorf("CATALOG_FILE cannot be empty")
	}
	if c.CatalogDir == "" {
		return fmt.Errorf("CATALOG_DIR cannot be empty")
	}
	return nil
}

// CatalogPath is the default catalog file. A relative CATALOG_FILE lives
// under CATALOG_DIR.
func (c *Config) CatalogPath() string {
	if filepath.IsAbs(c.CatalogFile) {
		return c.CatalogFile
	}
	return filepath.Join(c.CatalogDir, c.CatalogFile)
}
