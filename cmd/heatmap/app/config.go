package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	defaultScale = 4
)

type ImageFormat string

type Config struct {
	DBPath        string
	RunID         int64
	Baseline      int
	PolI, PolJ    int
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	Scale         int // Pixels per cell
	MinFrequency  *float64
	MaxFrequency  *float64
	MaxPower      *float64
	MinPower      *float64
	DynamicRange  float64 // dB below the peak power
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:       ImagePNG,
		Theme:        ClassicTheme,
		Scale:        defaultScale,
		DynamicRange: defaultDynamicRange,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:])
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var minPower, maxPower, minFreq, maxFreq float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.RunID, "r", 1, "Run ID")
	fs.IntVar(&c.Baseline, "b", 0, "Baseline index")
	fs.IntVar(&c.PolI, "pi", 0, "First polarisation index of the block")
	fs.IntVar(&c.PolJ, "pj", 0, "Second polarisation index of the block")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, jungle, thermal, marine, enhanced]")
	fs.IntVar(&c.Scale, "scale", defaultScale, "Pixels per multipole and frequency cell")
	fs.Float64Var(&minFreq, "min-freq", 0, "Minimum frequency in MHz")
	fs.Float64Var(&maxFreq, "max-freq", 0, "Maximum frequency in MHz")
	fs.Float64Var(&minPower, "min-power", 0, "Define a manual minimum power (format nn.n)")
	fs.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum power (format nn.n)")
	fs.Float64Var(&c.DynamicRange, "range", defaultDynamicRange, "Dynamic range of the colour scale below the peak power, in dB")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as multipole and frequency scales")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		case "min-freq":
			c.MinFrequency = &minFreq
		case "max-freq":
			c.MaxFrequency = &maxFreq
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.RunID <= 0 {
		err = errors.New("run id is required")
	} else if c.Baseline < 0 {
		err = fmt.Errorf("invalid baseline index: %d", c.Baseline)
	} else if c.PolI < 0 || c.PolJ < 0 {
		err = fmt.Errorf("invalid polarisation indices: %d, %d", c.PolI, c.PolJ)
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if c.Scale < 1 {
		err = fmt.Errorf("scale must be positive: %d given", c.Scale)
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validColorThemes[ColorTheme(strings.ToLower(theme))]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if c.DynamicRange <= 0 {
		err = fmt.Errorf("dynamic range must be positive: %0.1f given", c.DynamicRange)
	} else if c.MinPower != nil && c.MaxPower != nil && *c.MinPower >= *c.MaxPower {
		err = fmt.Errorf("min power %0.1f must be below max power %0.1f", *c.MinPower, *c.MaxPower)
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(strings.ToLower(theme))
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
