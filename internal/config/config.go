// Package config loads imgreduce settings from defaults, an optional YAML
// file, IMGREDUCE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "IMGREDUCE"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Quality       int           `mapstructure:"quality"`
	Profile       string        `mapstructure:"profile"`
	Background    string        `mapstructure:"background"`
	Timeout       time.Duration `mapstructure:"timeout"`
	OutputDir     string        `mapstructure:"output_dir"`
	Prefix        string        `mapstructure:"prefix"`
	Overwrite     bool          `mapstructure:"overwrite"`
	MaxInputBytes int64         `mapstructure:"max_input_bytes"`
	MaxPixels     int           `mapstructure:"max_pixels"`
	PreviewSize   int           `mapstructure:"preview_size"`
	Report        bool          `mapstructure:"report"`
	Log           LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("quality", 0) // 0 = take the profile's quality
	v.SetDefault("profile", "default")
	v.SetDefault("background", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("output_dir", ".")
	v.SetDefault("prefix", "compressed_")
	v.SetDefault("overwrite", false)
	v.SetDefault("max_input_bytes", int64(64<<20))
	v.SetDefault("max_pixels", 100_000_000)
	v.SetDefault("preview_size", 80)
	v.SetDefault("report", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig builds a viper instance. An explicit path must exist; without
// one, imgreduce.yaml is searched in the working directory and the user
// config directory, and its absence is not an error.
func LoadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("imgreduce")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "imgreduce"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// BindFlags lets command-line flags override file and env values. Keys
// are the flag names with dashes turned into underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		switch f.Name {
		case "log-level":
			key = "log.level"
		case "log-format":
			key = "log.format"
		}
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges. A zero quality and empty background are legal
// and mean "use the profile's value".
func (c *Config) Validate() error {
	if c.Quality != 0 && (c.Quality < 1 || c.Quality > 100) {
		return fmt.Errorf("%w: quality %d not in [1,100]", ErrInvalid, c.Quality)
	}
	if c.Background != "" {
		if _, err := ParseColor(c.Background); err != nil {
			return fmt.Errorf("%w: background: %v", ErrInvalid, err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	}
	if c.MaxInputBytes < 0 || c.MaxPixels < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalid)
	}
	if c.PreviewSize < 0 {
		return fmt.Errorf("%w: preview_size must not be negative", ErrInvalid)
	}
	if strings.ContainsAny(c.Prefix, `/\`) {
		return fmt.Errorf("%w: prefix %q contains a path separator", ErrInvalid, c.Prefix)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want text or json)", ErrInvalid, c.Log.Format)
	}
	return nil
}

// ParseColor parses #rgb or #rrggbb (the leading # is optional) into an
// opaque colour.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("colour %q: want #rgb or #rrggbb", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
