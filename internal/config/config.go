// Package config loads tcstore settings from an optional YAML file,
// TCSTORE_* environment variables and built-in defaults, in that order of
// precedence (env wins over file).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, with dots in keys
// replaced by underscores: filter.workers -> TCSTORE_FILTER_WORKERS.
const EnvPrefix = "TCSTORE"

// Config is the full tcstore configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Filter  FilterConfig  `mapstructure:"filter"`
	List    ListConfig    `mapstructure:"list"`
	Journal JournalConfig `mapstructure:"journal"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// FilterConfig controls filter query execution.
type FilterConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1,max=256"`
}

// ListConfig controls list item summaries.
type ListConfig struct {
	Fields []string `mapstructure:"fields" validate:"dive,required"`
}

// JournalConfig controls the SQLite audit mirror. An empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// SeedConfig controls the example trade generator.
type SeedConfig struct {
	Count    int    `mapstructure:"count" validate:"min=1,max=100"`
	Seed     uint64 `mapstructure:"seed"`
	BaseDate string `mapstructure:"base_date" validate:"omitempty,datetime=2006-01-02"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("filter.workers", 1)
	v.SetDefault("list.fields", []string{
		"data.general.tradeId",
		"data.general.label",
		"data.common.book",
		"data.common.counterparty",
		"data.common.tradeDate",
	})
	v.SetDefault("journal.path", "")
	v.SetDefault("seed.count", 30)
	v.SetDefault("seed.seed", 1)
	v.SetDefault("seed.base_date", "")
}

// Load reads configuration. path may be empty, in which case only env and
// defaults apply. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges. The error lists every offending key.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel maps Log.Level to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Base returns the generator base date, or today (UTC) when unset.
func (c SeedConfig) Base(now func() time.Time) time.Time {
	if c.BaseDate != "" {
		if t, err := time.Parse("2006-01-02", c.BaseDate); err == nil {
			return t
		}
	}
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
