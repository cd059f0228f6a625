// Package config loads service settings from defaults, an optional config
// file, and RECOLOR_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ironsheep/facade-recolor/internal/recolor"
	"github.com/ironsheep/facade-recolor/internal/segmentation"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RECOLOR_MAX_IMAGE_SIDE or RECOLOR_MQTT_BROKER.
const EnvPrefix = "RECOLOR"

// Config holds all process settings.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// MaxImageSide bounds the longest side of a photo before recoloring.
	MaxImageSide int     `mapstructure:"max_image_side"`
	MinMaskRatio float64 `mapstructure:"min_mask_ratio"`
	Alpha        float64 `mapstructure:"alpha"`
	JPEGQuality  int     `mapstructure:"jpeg_quality"`

	WallClass     int `mapstructure:"wall_class"`
	BuildingClass int `mapstructure:"building_class"`

	// OutputDir is where results are written; empty disables storage and
	// results are returned inline.
	OutputDir     string `mapstructure:"output_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`

	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// MQTTConfig configures the recolor worker.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Workers     int    `mapstructure:"workers"`
}

// Params returns the recolor blend parameters.
func (c *Config) Params() recolor.Params {
	return recolor.Params{Alpha: c.Alpha, MinCoverage: c.MinMaskRatio}
}

// Classes returns the segmentation class indices.
func (c *Config) Classes() segmentation.Classes {
	return segmentation.Classes{Wall: c.WallClass, Building: c.BuildingClass}
}

// Debug reports whether verbose logging was requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Validate checks ranges that would otherwise fail on every request.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxImageSide < 0 {
		return fmt.Errorf("config: max_image_side must not be negative, got %d", c.MaxImageSide)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality must be 1-100, got %d", c.JPEGQuality)
	}
	if c.MQTT.Workers < 1 {
		return fmt.Errorf("config: mqtt.workers must be at least 1, got %d", c.MQTT.Workers)
	}
	return nil
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	classes := segmentation.DefaultClasses()
	v.SetDefault("log_level", "info")
	v.SetDefault("max_image_side", 1600)
	v.SetDefault("min_mask_ratio", recolor.DefaultMinCoverage)
	v.SetDefault("alpha", recolor.DefaultAlpha)
	v.SetDefault("jpeg_quality", 88)
	v.SetDefault("wall_class", classes.Wall)
	v.SetDefault("building_class", classes.Building)
	v.SetDefault("output_dir", "")
	v.SetDefault("public_base_url", "")
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "/facade")
	v.SetDefault("mqtt.workers", 4)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration. configFile may be empty; otherwise it is read
// after "~" expansion and its format is taken from the extension.
func Load(configFile string) (*Config, error) {
	v := New()

	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, fmt.Errorf("config: expanding %q: %w", configFile, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
