package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Env      string `envconfig:"ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"research.db"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	LockTTL       time.Duration `envconfig:"LOCK_TTL" default:"30s"`

	KafkaBrokers     string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic       string `envconfig:"KAFKA_TOPIC" default:"research.events"`
	EventCompression string `envconfig:"EVENT_COMPRESSION" default:"lz4"`

	MaxFavorites int `envconfig:"MAX_FAVORITES" default:"5"`

	SourceMergeSchedule string `envconfig:"SOURCE_MERGE_SCHEDULE" default:"@every 1h"`
	MetricsAddr         string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads the configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	return &cfg, nil
}

// LoadConfig is Load for command entry points, a bad configuration is fatal.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("error loading config: %v", err)
	}

	return cfg
}

func (c *Config) Dialector() (gorm.Dialector, error) {
	switch strings.ToLower(c.DBDriver) {
	case "postgres":
		return postgres.Open(c.DBDSN), nil
	case "sqlite":
		return sqlite.Open(c.DBDSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}
}

// OpenDb opens the configured database.
func OpenDb(cfg *Config) (*gorm.DB, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(),
			IgnoreRecordNotFoundError: true,
		}),
	})
}

// GetDb is OpenDb for command entry points, failing to open the database is fatal.
func GetDb(cfg *Config) *gorm.DB {
	db, err := OpenDb(cfg)
	if err != nil {
		logrus.Fatalf("error opening database: %v", err)
	}

	return db
}

func gormLogLevel() logger.LogLevel {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		return logger.Info
	}

	return logger.Warn
}
