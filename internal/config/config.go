// Package config turns viper settings (flags, config file, environment)
// into render layouts and loggers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kiesman99/backdrop/internal/palette"
	"github.com/kiesman99/backdrop/pkg/tile"
)

// EnvPrefix namespaces environment overrides, e.g. BACKDROP_GRID=9
const EnvPrefix = "BACKDROP"

// Keys shared by flags, the config file and the environment
const (
	KeyImages          = "image"
	KeyBackground      = "background"
	KeyPalette         = "palette"
	KeyGrid            = "grid"
	KeyDensity         = "density"
	KeyScale           = "scale"
	KeySpacing         = "spacing"
	KeyRowOffset       = "row-offset"
	KeyEmbossIntensity = "emboss-intensity"
	KeyEmbossDirection = "emboss-direction"
	KeyEmbossDepth     = "emboss-depth"
	KeySeed            = "seed"
	KeyUserAgent       = "user-agent"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyLogFile         = "log-file"
)

// SetDefaults registers the default layout so that config files and the
// environment may override any single field.
func SetDefaults(v *viper.Viper) {
	d := tile.DefaultLayout()
	v.SetDefault(KeyBackground, d.BackgroundColor)
	v.SetDefault(KeyGrid, d.GridSize)
	v.SetDefault(KeyDensity, d.Density)
	v.SetDefault(KeyScale, d.TilePixelScale)
	v.SetDefault(KeySpacing, d.Spacing)
	v.SetDefault(KeyRowOffset, d.RowOffsetPercent)
	v.SetDefault(KeyEmbossIntensity, d.EmbossIntensity)
	v.SetDefault(KeyEmbossDirection, d.EmbossDirection)
	v.SetDefault(KeyEmbossDepth, d.EmbossDepth)
	v.SetDefault(KeyUserAgent, tile.DefaultUserAgent)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// BindEnv makes every key overridable through BACKDROP_* variables
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// FromViper builds the layout for one render pass. Blank image entries are
// dropped; a named palette takes precedence over the background color.
func FromViper(v *viper.Viper) (tile.LayoutConfig, error) {
	cfg := tile.LayoutConfig{
		BackgroundColor:  v.GetString(KeyBackground),
		GridSize:         v.GetInt(KeyGrid),
		Density:          v.GetFloat64(KeyDensity),
		TilePixelScale:   v.GetFloat64(KeyScale),
		Spacing:          v.GetFloat64(KeySpacing),
		RowOffsetPercent: v.GetFloat64(KeyRowOffset),
		EmbossIntensity:  v.GetFloat64(KeyEmbossIntensity),
		EmbossDirection:  v.GetFloat64(KeyEmbossDirection),
		EmbossDepth:      v.GetFloat64(KeyEmbossDepth),
	}

	if name := v.GetString(KeyPalette); name != "" {
		p, ok := palette.Lookup(name)
		if !ok {
			return cfg, fmt.Errorf("unknown palette %q", name)
		}
		cfg.BackgroundColor = p.Color
	}

	for _, u := range v.GetStringSlice(KeyImages) {
		if u = strings.TrimSpace(u); u != "" {
			cfg.ImageURLs = append(cfg.ImageURLs, u)
		}
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Seed returns the configured layout seed, or nil when none was set
func Seed(v *viper.Viper) *uint64 {
	if !v.IsSet(KeySeed) {
		return nil
	}
	s := v.GetUint64(KeySeed)
	return &s
}
