package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/assetdesk/assetdesk/internal/model"
)

const (
	defaultAddr         = model.DefaultStubAddr
	defaultQueryTimeout = 10 * time.Second
)

// stubConfig is the stand-in service's runtime configuration.
type stubConfig struct {
	Addr         string        `mapstructure:"addr"`
	DBPath       string        `mapstructure:"db-path"`
	Seed         bool          `mapstructure:"seed"`
	QueryTimeout time.Duration `mapstructure:"query-timeout"`
	OTLPEndpoint string        `mapstructure:"otlp-endpoint"`
	Debug        bool          `mapstructure:"debug"`
	ConfigPath   string        `mapstructure:"-"`
}

func loadConfig(configPath string) (stubConfig, error) {
	var cfg stubConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ASSETDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("addr", defaultAddr)
	v.SetDefault("db-path", "")
	v.SetDefault("seed", true)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("debug", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "assetdesk", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if strings.HasPrefix(cfg.DBPath, "~/") {
		cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
	}
	if cfg.QueryTimeout <= 0 {
		return cfg, fmt.Errorf("invalid query-timeout: %s", cfg.QueryTimeout)
	}

	return cfg, nil
}
