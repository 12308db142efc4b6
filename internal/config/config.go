package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Repository settings
	Repositories []string  `mapstructure:"repositories"`
	Since        time.Time `mapstructure:"-"`
	Until        time.Time `mapstructure:"-"`
	SinceRaw     string    `mapstructure:"since"` // "2024-01-02" or a duration like "8760h"
	UntilRaw     string    `mapstructure:"until"`

	// Display settings
	Timezone      *time.Location `mapstructure:"-"`
	TimezoneName  string         `mapstructure:"timezone"`
	TimeFormat24h bool           `mapstructure:"time_format_24h"`

	// Limits
	MaxAuthors int `mapstructure:"max_authors"`
	MaxFiles   int `mapstructure:"max_files"`

	// Timeline settings
	SparklineWidth int `mapstructure:"sparkline_width"`
	RollingWindow  int `mapstructure:"rolling_window"` // days

	// Hotspot thresholds
	HotspotAuthorThreshold int `mapstructure:"hotspot_author_threshold"`

	// AuthorAliases maps an alias name to the canonical author name
	AuthorAliases map[string]string `mapstructure:"author_aliases"`

	// Parsing and storage
	FlushTrailing bool   `mapstructure:"flush_trailing"`
	DBPath        string `mapstructure:"db_path"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures the logrus logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Default returns default configuration
func Default() *Config {
	now := time.Now()
	return &Config{
		Since:                  now.AddDate(-1, 0, 0),
		Until:                  now,
		Timezone:               time.Local,
		TimezoneName:           "Local",
		TimeFormat24h:          true,
		MaxAuthors:             20,
		MaxFiles:               50,
		SparklineWidth:         70,
		RollingWindow:          7,
		HotspotAuthorThreshold: 2,
		AuthorAliases:          map[string]string{},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, or from the standard locations when
// path is empty. A missing config file is not an error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("timezone", cfg.TimezoneName)
	v.SetDefault("time_format_24h", cfg.TimeFormat24h)
	v.SetDefault("max_authors", cfg.MaxAuthors)
	v.SetDefault("max_files", cfg.MaxFiles)
	v.SetDefault("sparkline_width", cfg.SparklineWidth)
	v.SetDefault("rolling_window", cfg.RollingWindow)
	v.SetDefault("hotspot_author_threshold", cfg.HotspotAuthorThreshold)
	v.SetDefault("flush_trailing", cfg.FlushTrailing)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	v.SetEnvPrefix("COCOSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{"since", "until", "db_path"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".cocostat")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".cocostat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolve(time.Now()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve turns the raw string settings into typed values
func (c *Config) resolve(now time.Time) error {
	tz, err := loadLocation(c.TimezoneName)
	if err != nil {
		return err
	}
	c.Timezone = tz

	if c.UntilRaw != "" {
		if c.Until, err = ParseDate(c.UntilRaw, now, tz); err != nil {
			return fmt.Errorf("invalid until: %w", err)
		}
	}
	if c.SinceRaw != "" {
		if c.Since, err = ParseDate(c.SinceRaw, c.Until, tz); err != nil {
			return fmt.Errorf("invalid since: %w", err)
		}
	}
	if c.Since.After(c.Until) {
		return fmt.Errorf("since (%s) is after until (%s)", c.Since.Format("2006-01-02"), c.Until.Format("2006-01-02"))
	}

	if c.AuthorAliases == nil {
		c.AuthorAliases = map[string]string{}
	}
	for i, repo := range c.Repositories {
		c.Repositories[i] = expandPath(repo)
	}
	c.DBPath = expandPath(c.DBPath)
	return nil
}

// ParseDate accepts "2006-01-02", RFC3339, or a Go duration subtracted
// from ref ("720h" is thirty days before ref)
func ParseDate(s string, ref time.Time, tz *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if tz == nil {
		tz = time.Local
	}
	if t, err := time.ParseInLocation("2006-01-02", s, tz); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return ref.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or duration", s)
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return tz, nil
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		homeEnvFile := filepath.Join(homeDir, ".cocostat", ".env")
		if _, err := os.Stat(homeEnvFile); err == nil {
			_ = godotenv.Load(homeEnvFile)
		}
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
