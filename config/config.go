// Package config loads the TOML SDR gain/driver configuration used to
// shape the arguments passed to the SDR driver subprocess. The loader
// shape (viper, defaults before read, then validate) follows a typical
// daemon config loader; only the schema and file type differ. Environment
// variables are not consulted.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Setting is a free-form driver setting, {key,value} as strings.
type Setting struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// Gain is a driver gain stage, {key,value} with a float value.
type Gain struct {
	Key   string  `mapstructure:"key"`
	Value float64 `mapstructure:"value"`
}

// Antenna carries an optional antenna name for a driver.
type Antenna struct {
	Name string `mapstructure:"name"`
}

// SDR describes one [[sdr]] table: the driver name, its channel, an
// optional antenna, and zero or more settings and gain stages.
type SDR struct {
	Driver  string    `mapstructure:"driver"`
	Channel int       `mapstructure:"channel"`
	Antenna Antenna   `mapstructure:"antenna"`
	Setting []Setting `mapstructure:"setting"`
	Gain    []Gain    `mapstructure:"gain"`
}

// Config is the top-level TOML document: one or more [[sdr]] tables.
type Config struct {
	SDR []SDR `mapstructure:"sdr"`
}

// Load reads path as TOML and decodes it into a Config. A file with no
// [[sdr]] table gets the default: one "rtlsdr" driver on channel 0. A
// driver list that is still empty after that, or an [[sdr]] table without
// a driver, is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("sdr", []map[string]interface{}{
		{"driver": "rtlsdr", "channel": 0},
	})

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.SDR) == 0 {
		return fmt.Errorf("at least one [[sdr]] table is required")
	}
	for i, s := range cfg.SDR {
		if s.Driver == "" {
			return fmt.Errorf("sdr[%d]: driver is required", i)
		}
		if s.Channel < 0 {
			return fmt.Errorf("sdr[%d]: channel must be non-negative", i)
		}
	}
	return nil
}
