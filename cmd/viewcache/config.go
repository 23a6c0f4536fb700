package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type config struct {
	Root           string        `mapstructure:"Root"`
	Bucket         string        `mapstructure:"Bucket"`
	Region         string        `mapstructure:"Region"`
	Endpoint       string        `mapstructure:"Endpoint"`
	ForcePathStyle bool          `mapstructure:"ForcePathStyle"`
	SignedURLTTL   time.Duration `mapstructure:"SignedURLTTL"`
	ThumbnailExt   string        `mapstructure:"ThumbnailExt"`
}

// loadConfig reads configuration from an optional file plus VIEWCACHE_*
// environment variables.
func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix("VIEWCACHE")
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache root: %w", err)
	}
	cfg.Root = abs
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Root", "./viewcache")
	v.SetDefault("Region", "us-east-1")
	v.SetDefault("ForcePathStyle", false)
	v.SetDefault("SignedURLTTL", "15m")
	v.SetDefault("ThumbnailExt", "png")
}
