package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	AppEnv    string `envconfig:"APP_ENV" default:"dev"`
	Port      int    `envconfig:"PORT" default:"8080"`
	TZ        string `envconfig:"TZ" default:"UTC"`
	DBPath    string `envconfig:"DB_PATH"`
	SecretKey string `envconfig:"SECRET_KEY"`

	Redis struct {
		Addr    string `envconfig:"REDIS_ADDR"`
		Channel string `envconfig:"REDIS_CHANNEL" default:"platewise:changes"`
	} `envconfig:""`

	ReconcileSchedule string        `envconfig:"RECONCILE_SCHEDULE" default:"@every 1m"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
}

func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "platewise.db")
	}
	return cfg, nil
}

func (cfg AppConfig) Location() *time.Location {
	location, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		return time.UTC
	}
	return location
}

func (cfg AppConfig) IsDev() bool {
	return cfg.AppEnv == "dev"
}
