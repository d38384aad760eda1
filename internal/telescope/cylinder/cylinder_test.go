package cylinder

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/telescope"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no cylinders", func(c *Config) { c.NumCylinders = 0 }, true},
		{"no feeds", func(c *Config) { c.NumFeeds = -1 }, true},
		{"zero width", func(c *Config) { c.CylinderWidth = 0 }, true},
		{"zero spacing", func(c *Config) { c.FeedSpacing = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeedPositions(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	pos := c.FeedPositions()
	require.Len(t, pos, 12)
	assert.Equal(t, r2.Vec{X: 0, Y: 0}, pos[0])
	assert.Equal(t, r2.Vec{X: 0, Y: 2.5}, pos[5])
	assert.Equal(t, r2.Vec{X: 20, Y: 0}, pos[6])
	assert.Equal(t, r2.Vec{X: 20, Y: 2.5}, pos[11])

	cyl, err := c.FeedPositionsCylinder(1)
	require.NoError(t, err)
	assert.Equal(t, pos[6:], cyl)
}

func TestFeedPositionsCylinderInvalid(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	for _, i := range []int{-1, 2} {
		_, err := c.FeedPositionsCylinder(i)
		assert.True(t, errors.Is(err, telescope.ErrInvalidGeometryIndex), "cylinder %d", i)
	}
}

func TestUnique(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	pairs := telescope.FeedPairs(12)
	unique, redundancy := c.Unique(pairs)

	// Five intra-cylinder spacings and eleven inter-cylinder offsets.
	require.Len(t, unique, 16)

	sum := 0
	for _, r := range redundancy {
		sum += r
	}
	assert.Equal(t, len(pairs), sum)

	assert.Equal(t, []int{10, 8, 6, 4, 2}, redundancy[:5])
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}, redundancy[5:])
}

func TestTelescope(t *testing.T) {
	c, err := New(Config{NumCylinders: 1, NumFeeds: 3, CylinderWidth: 0.5, FeedSpacing: 1})
	require.NoError(t, err)

	u, err := telescope.NewUnpolarised(c.Beam())
	require.NoError(t, err)
	tel, err := telescope.New(c, u, telescope.WithFrequencyRange(10, 20, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, tel.NBase())
	assert.Equal(t, []int{2, 1}, tel.Redundancy())

	arr, err := tel.TransferForFrequency(0)
	require.NoError(t, err)
	assert.Equal(t, 2, arr.N)
	assert.Greater(t, cmplx.Abs(arr.Block(0).At(0, 0)), 0.0)
}

func TestBeamCache(t *testing.T) {
	b := NewBeam(20)
	sky := &telescope.Sky{Nside: 1}
	freq := telescope.Frequency{Index: 3, MHz: 400, Wavelength: 0.75}

	first := b.Beam(sky, 0, freq)
	second := b.Beam(sky, 5, freq)
	assert.Equal(t, first, second)

	clone := b.Clone().(*Beam)
	assert.Nil(t, clone.cache)
}
