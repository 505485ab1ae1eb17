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

// cliConfig holds the shell's configuration.
type cliConfig struct {
	APIURL             string        `mapstructure:"api-url"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	PageSize           int           `mapstructure:"page-size"`
	ToastTTL           time.Duration `mapstructure:"toast-ttl"`
	StartPath          string        `mapstructure:"start-path"`
	DownloadDir        string        `mapstructure:"download-dir"`
	LogFile            string        `mapstructure:"log-file"`
	OTLPEndpoint       string        `mapstructure:"otlp-endpoint"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ASSETDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-url", model.DefaultAPIURL)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("page-size", model.DefaultPageSize)
	v.SetDefault("toast-ttl", model.DefaultToastTTL)
	v.SetDefault("start-path", model.DefaultStartPath)
	v.SetDefault("download-dir", "~/Downloads")
	v.SetDefault("log-file", "~/.local/state/assetdesk/assetdesk.log")
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("reverse-scroll-wheel", false)

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

	cfg.DownloadDir = expandHome(home, cfg.DownloadDir)
	cfg.LogFile = expandHome(home, cfg.LogFile)

	switch {
	case cfg.PageSize < 1 || cfg.PageSize > model.MaxPageSize:
		return cfg, fmt.Errorf("invalid page-size: %d (want 1-%d)", cfg.PageSize, model.MaxPageSize)
	case cfg.RequestTimeout <= 0:
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	case !strings.HasPrefix(cfg.StartPath, "/"):
		return cfg, fmt.Errorf("invalid start-path: %q", cfg.StartPath)
	}

	return cfg, nil
}

func expandHome(home, path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
