// Package cylinder implements a telescope made of parallel north-south
// cylinders, each carrying a line of evenly spaced feeds.
package cylinder

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/telescope"
)

const (
	DefaultNumCylinders  = 2
	DefaultNumFeeds      = 6
	DefaultCylinderWidth = 20.0 // Metres
	DefaultFeedSpacing   = 0.5  // Metres
)

// Config describes the cylinder layout.
type Config struct {
	NumCylinders  int     `yaml:"numCylinders" json:"numCylinders"`   // Number of cylinders, placed side by side along u
	NumFeeds      int     `yaml:"numFeeds" json:"numFeeds"`           // Feeds per cylinder
	CylinderWidth float64 `yaml:"cylinderWidth" json:"cylinderWidth"` // Width of a cylinder in metres
	FeedSpacing   float64 `yaml:"feedSpacing" json:"feedSpacing"`     // Spacing of feeds along a cylinder in metres
}

// DefaultConfig returns the standard two-cylinder layout.
func DefaultConfig() Config {
	return Config{
		NumCylinders:  DefaultNumCylinders,
		NumFeeds:      DefaultNumFeeds,
		CylinderWidth: DefaultCylinderWidth,
		FeedSpacing:   DefaultFeedSpacing,
	}
}

func (c *Config) Validate() error {
	if c.NumCylinders <= 0 {
		return fmt.Errorf("cylinder.Config: number of cylinders must be positive: %d given", c.NumCylinders)
	}
	if c.NumFeeds <= 0 {
		return fmt.Errorf("cylinder.Config: number of feeds must be positive: %d given", c.NumFeeds)
	}
	if c.CylinderWidth <= 0 {
		return fmt.Errorf("cylinder.Config: cylinder width must be positive: %g given", c.CylinderWidth)
	}
	if c.FeedSpacing <= 0 {
		return fmt.Errorf("cylinder.Config: feed spacing must be positive: %g given", c.FeedSpacing)
	}
	return nil
}

// Cylinder is the geometry of a cylinder telescope.
type Cylinder struct {
	config Config
}

// New creates a Cylinder geometry.
func New(config Config) (*Cylinder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Cylinder{config: config}, nil
}

// Config returns the layout.
func (c *Cylinder) Config() Config {
	return c.config
}

// FeedPositionsCylinder returns the feed positions of cylinder i, which
// sits i cylinder widths east of the first.
func (c *Cylinder) FeedPositionsCylinder(i int) ([]r2.Vec, error) {
	if i < 0 || i >= c.config.NumCylinders {
		return nil, fmt.Errorf("%w: cylinder %d out of range [0, %d)", telescope.ErrInvalidGeometryIndex, i, c.config.NumCylinders)
	}

	pos := make([]r2.Vec, c.config.NumFeeds)
	for j := range pos {
		pos[j] = r2.Vec{
			X: float64(i) * c.config.CylinderWidth,
			Y: float64(j) * c.config.FeedSpacing,
		}
	}
	return pos, nil
}

// FeedPositions returns every feed, cylinder by cylinder.
func (c *Cylinder) FeedPositions() []r2.Vec {
	pos := make([]r2.Vec, 0, c.config.NumCylinders*c.config.NumFeeds)
	for i := 0; i < c.config.NumCylinders; i++ {
		cyl, _ := c.FeedPositionsCylinder(i)
		pos = append(pos, cyl...)
	}
	return pos
}

// UWidth returns the cylinder width.
func (c *Cylinder) UWidth() float64 {
	return c.config.CylinderWidth
}

// Unique groups feed pairs by exactly equal folded separation.
func (c *Cylinder) Unique(pairs []telescope.FeedPair) ([]telescope.FeedPair, []int) {
	return telescope.UniqueExact(c.FeedPositions(), pairs)
}

// Beam returns the field pattern of a feed on this cylinder.
func (c *Cylinder) Beam() *Beam {
	return NewBeam(c.config.CylinderWidth)
}
