// Package planar implements a telescope of feeds at arbitrary positions on
// the ground, with baselines clustered on a tolerance grid.
package planar

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/telescope"
	"github.com/roman-kulish/beam-transfer/internal/telescope/cylinder"
)

// Config describes a planar array.
type Config struct {
	Positions [][2]float64 `yaml:"positions" json:"positions"` // Feed (east, north) positions in metres
	UWidth    float64      `yaml:"uWidth" json:"uWidth"`       // Aperture extent along u in metres
	Tolerance float64      `yaml:"tolerance" json:"tolerance"` // Baseline clustering grid in metres, 0 for exact matching
	BeamWidth float64      `yaml:"beamWidth" json:"beamWidth"` // Width of each feed's reflector in metres
}

func (c *Config) Validate() error {
	if len(c.Positions) < 2 {
		return fmt.Errorf("planar.Config: at least two feeds required: %d given", len(c.Positions))
	}
	if c.UWidth < 0 {
		return fmt.Errorf("planar.Config: u width must not be negative: %g given", c.UWidth)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("planar.Config: tolerance must not be negative: %g given", c.Tolerance)
	}
	if c.BeamWidth <= 0 {
		return fmt.Errorf("planar.Config: beam width must be positive: %g given", c.BeamWidth)
	}
	return nil
}

// Array is the geometry of a planar array.
type Array struct {
	config    Config
	positions []r2.Vec
}

// New creates a planar Array.
func New(config Config) (*Array, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	positions := make([]r2.Vec, len(config.Positions))
	for i, p := range config.Positions {
		positions[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return &Array{config: config, positions: positions}, nil
}

// FeedPositions returns the feed positions.
func (a *Array) FeedPositions() []r2.Vec {
	return a.positions
}

// UWidth returns the aperture extent along u.
func (a *Array) UWidth() float64 {
	return a.config.UWidth
}

// Unique clusters feed pairs whose folded separations agree within the tolerance.
func (a *Array) Unique(pairs []telescope.FeedPair) ([]telescope.FeedPair, []int) {
	return telescope.UniqueTolerance(a.positions, pairs, a.config.Tolerance)
}

// Beam returns the field pattern shared by every feed.
func (a *Array) Beam() *cylinder.Beam {
	return cylinder.NewBeam(a.config.BeamWidth)
}
