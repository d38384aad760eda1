package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/beam-transfer/internal/telescope"
	"github.com/roman-kulish/beam-transfer/internal/telescope/cylinder"
	"github.com/roman-kulish/beam-transfer/internal/telescope/planar"
)

const (
	GeometryCylinder GeometryType = "cylinder"
	GeometryPlanar   GeometryType = "planar"

	PolarisationUnpolarised PolarisationType = "unpolarised"
	PolarisationPolarised   PolarisationType = "polarised"

	defaultDataDirectory = "data"
	defaultMaxBatchSize  = 100
	defaultWorkers       = 1
)

type GeometryType string

type PolarisationType string

// LogLevel is a slog level read from its textual form ("debug", "info", ...).
type LogLevel slog.Level

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("app.LogLevel: failed to parse: %s", err)
	}

	*l = LogLevel(level)
	return nil
}

func (l LogLevel) Level() slog.Level {
	return slog.Level(l)
}

// Config represents the main application configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Telescope TelescopeConfig `yaml:"telescope"`
	Transfer  TransferConfig  `yaml:"transfer"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
	Workers  int      `yaml:"workers"` // Frequency channels computed concurrently
}

// FrequencyConfig is the observed band.
type FrequencyConfig struct {
	Lower    float64 `yaml:"lower" json:"lower"` // MHz
	Upper    float64 `yaml:"upper" json:"upper"` // MHz
	Channels int     `yaml:"channels" json:"channels"`
}

// GeometryConfig selects and configures the feed layout.
type GeometryConfig struct {
	Type     GeometryType     `yaml:"type" json:"type"`
	Cylinder *cylinder.Config `yaml:"cylinder" json:"cylinder,omitempty"`
	Planar   *planar.Config   `yaml:"planar" json:"planar,omitempty"`
}

// TelescopeConfig represents the instrument.
type TelescopeConfig struct {
	Latitude      float64          `yaml:"latitude" json:"latitude"`   // Degrees
	Longitude     float64          `yaml:"longitude" json:"longitude"` // Degrees
	Frequency     FrequencyConfig  `yaml:"frequency" json:"frequency"`
	Polarisation  PolarisationType `yaml:"polarisation" json:"polarisation"`
	FeedX         [2]float64       `yaml:"feedX" json:"feedX"`
	FeedY         [2]float64       `yaml:"feedY" json:"feedY"`
	AccuracyBoost int              `yaml:"accuracyBoost" json:"accuracyBoost"`
	Iterations    int              `yaml:"iterations" json:"iterations"`
	Geometry      GeometryConfig   `yaml:"geometry" json:"geometry"`
}

// TransferConfig selects what to compute.
type TransferConfig struct {
	GlobalLmax  *bool `yaml:"globalLmax"`  // Size every block for the telescope's largest bandlimit (default: true)
	Frequencies []int `yaml:"frequencies"` // Channel indices, empty for every channel
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// DefaultConfig returns the configuration used for every value the file omits.
func DefaultConfig() *Config {
	cyl := cylinder.DefaultConfig()

	return &Config{
		Settings: Settings{
			LogLevel: LogLevel(slog.LevelInfo),
			Workers:  defaultWorkers,
		},
		Telescope: TelescopeConfig{
			Latitude:  telescope.DefaultLatitude,
			Longitude: telescope.DefaultLongitude,
			Frequency: FrequencyConfig{
				Lower:    telescope.DefaultFreqLower,
				Upper:    telescope.DefaultFreqUpper,
				Channels: telescope.DefaultNumFreq,
			},
			Polarisation:  PolarisationUnpolarised,
			FeedX:         [2]float64{1, 0},
			FeedY:         [2]float64{0, 1},
			AccuracyBoost: telescope.DefaultAccuracyBoost,
			Iterations:    telescope.DefaultIterations,
			Geometry: GeometryConfig{
				Type:     GeometryCylinder,
				Cylinder: &cyl,
			},
		},
		Storage: StorageConfig{
			DataDirectory: defaultDataDirectory,
			MaxBatchSize:  defaultMaxBatchSize,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration over the defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// UseGlobalLmax reports whether blocks are sized for the whole telescope.
func (c *TransferConfig) UseGlobalLmax() bool {
	return c.GlobalLmax == nil || *c.GlobalLmax
}

func (c *Config) Validate() error {
	if c.Settings.Workers < 1 {
		return fmt.Errorf("app.Config: workers must be positive: %d given", c.Settings.Workers)
	}
	if err := c.Telescope.Validate(); err != nil {
		return err
	}
	for _, f := range c.Transfer.Frequencies {
		if f < 0 || f >= c.Telescope.Frequency.Channels {
			return fmt.Errorf("app.Config: frequency index %d out of range [0, %d)", f, c.Telescope.Frequency.Channels)
		}
	}
	if c.Storage.MaxBatchSize < 1 {
		return fmt.Errorf("app.Config: max batch size must be positive: %d given", c.Storage.MaxBatchSize)
	}
	return nil
}

func (c *TelescopeConfig) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("app.TelescopeConfig: latitude must be between -90 and 90: %g given", c.Latitude)
	}
	if c.Frequency.Lower <= 0 || c.Frequency.Upper <= 0 {
		return fmt.Errorf("app.TelescopeConfig: frequencies must be positive: %g-%g MHz given", c.Frequency.Lower, c.Frequency.Upper)
	}
	if c.Frequency.Channels < 1 {
		return fmt.Errorf("app.TelescopeConfig: number of channels must be positive: %d given", c.Frequency.Channels)
	}
	if c.AccuracyBoost < 0 {
		return fmt.Errorf("app.TelescopeConfig: accuracy boost must not be negative: %d given", c.AccuracyBoost)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("app.TelescopeConfig: iterations must not be negative: %d given", c.Iterations)
	}

	switch c.Polarisation {
	case PolarisationUnpolarised, PolarisationPolarised:
	default:
		return fmt.Errorf("app.TelescopeConfig: unknown polarisation '%s'", c.Polarisation)
	}

	switch c.Geometry.Type {
	case GeometryCylinder:
		if c.Geometry.Cylinder == nil {
			return fmt.Errorf("app.TelescopeConfig: cylinder geometry requires a cylinder section")
		}
		return c.Geometry.Cylinder.Validate()
	case GeometryPlanar:
		if c.Geometry.Planar == nil {
			return fmt.Errorf("app.TelescopeConfig: planar geometry requires a planar section")
		}
		return c.Geometry.Planar.Validate()
	default:
		return fmt.Errorf("app.TelescopeConfig: unknown geometry '%s'", c.Geometry.Type)
	}
}
