package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the service configuration.
type Config struct {
	Port           string `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`

	// Anomaly model parameters.
	Contamination float64 `mapstructure:"contamination"`
	Seed          int64   `mapstructure:"seed"`
	Trees         int     `mapstructure:"trees"`

	// Rule engine parameters.
	HighValueThreshold float64 `mapstructure:"high_value_threshold"`
}

// Load loads configuration from defaults, GSTOPT_* environment variables,
// and an optional YAML file. Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTOPT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("port", "5001")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("contamination", 0.1)
	v.SetDefault("seed", 42)
	v.SetDefault("trees", 100)
	v.SetDefault("high_value_threshold", 100000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Contamination <= 0 || c.Contamination >= 1 {
		return nil, fmt.Errorf("contamination must be in (0, 1), got %v", c.Contamination)
	}
	if c.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}

	return &c, nil
}
