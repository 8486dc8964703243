package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dave/wherepoints/globals"
	"github.com/spf13/viper"
)

// Config holds the settings that can come from a YAML file or WHEREPOINTS_* environment variables.
// Command line flags override both.
type Config struct {
	Name        string  `mapstructure:"name"`
	Output      string  `mapstructure:"output"`
	Speed       float64 `mapstructure:"speed"` // m/s
	Start       string  `mapstructure:"start"` // RFC 3339
	Split       string  `mapstructure:"split"` // km markers, comma separated
	Elevation   bool    `mapstructure:"elevation"`
	SrtmCache   string  `mapstructure:"srtm_cache"`
	KML         string  `mapstructure:"kml"`
	GeoJSON     string  `mapstructure:"geojson"`
	Preview     string  `mapstructure:"preview"`
	PreviewSize int     `mapstructure:"preview_size"`
	LogFile     string  `mapstructure:"log_file"`
}

func Default() *Config {
	return &Config{
		Output:      ".",
		Speed:       globals.DEFAULT_SPEED,
		Start:       globals.DEFAULT_START.Format(time.RFC3339),
		PreviewSize: 800,
	}
}

// Load reads the config file at fpath on top of the defaults. An empty fpath only applies the
// environment.
func Load(fpath string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("name", def.Name)
	v.SetDefault("output", def.Output)
	v.SetDefault("speed", def.Speed)
	v.SetDefault("start", def.Start)
	v.SetDefault("split", def.Split)
	v.SetDefault("elevation", def.Elevation)
	v.SetDefault("srtm_cache", def.SrtmCache)
	v.SetDefault("kml", def.KML)
	v.SetDefault("geojson", def.GeoJSON)
	v.SetDefault("preview", def.Preview)
	v.SetDefault("preview_size", def.PreviewSize)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix("WHEREPOINTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fpath != "" {
		v.SetConfigFile(fpath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", fpath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Start))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start time %q: %w", c.Start, err)
	}
	return t.UTC(), nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive, got %v", c.Speed))
	}
	if _, err := c.StartTime(); err != nil {
		errs = append(errs, err)
	}
	if c.Preview != "" && c.PreviewSize < 64 {
		errs = append(errs, fmt.Errorf("preview size must be at least 64, got %d", c.PreviewSize))
	}
	return errors.Join(errs...)
}
