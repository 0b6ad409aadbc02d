package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Runtime holds process options that are not part of the settings document.
type Runtime struct {
	Listen          string        `mapstructure:"listen"`
	DataDir         string        `mapstructure:"data_dir"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MediaTimeout    time.Duration `mapstructure:"media_timeout"`
	LockWait        time.Duration `mapstructure:"lock_wait"`
	Log             LogOptions    `mapstructure:"log"`
	Refresh         RefreshLimits `mapstructure:"refresh"`
}

type LogOptions struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RefreshLimits struct {
	RatePerMinute int `mapstructure:"rate_per_minute"`
}

// SettingsPath is where the settings document lives.
func (r Runtime) SettingsPath() string { return filepath.Join(r.DataDir, "config.json") }

// CachePath is where the artwork cache document lives.
func (r Runtime) CachePath() string { return filepath.Join(r.DataDir, "cache.json") }

// LoadRuntime reads poster.yaml (or configFile when set) and POSTER_*
// environment variables on top of built-in defaults.
func LoadRuntime(configFile string) (Runtime, error) {
	v := viper.New()
	setRuntimeDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("poster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/poster-display")
	}

	v.SetEnvPrefix("POSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Runtime{}, fmt.Errorf("read runtime config: %w", err)
		}
	}

	var rt Runtime
	if err := v.Unmarshal(&rt); err != nil {
		return Runtime{}, fmt.Errorf("decode runtime config: %w", err)
	}

	if rt.RefreshInterval <= 0 {
		rt.RefreshInterval = 30 * time.Minute
	}
	if rt.MediaTimeout <= 0 {
		rt.MediaTimeout = 5 * time.Second
	}
	if strings.TrimSpace(rt.DataDir) == "" {
		rt.DataDir = "data"
	}
	return rt, nil
}

func setRuntimeDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("refresh_interval", "30m")
	v.SetDefault("media_timeout", "5s")
	v.SetDefault("lock_wait", "2s")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("refresh.rate_per_minute", 6)
}
