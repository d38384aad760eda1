package healpix

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNsideForLmax(t *testing.T) {
	tests := []struct {
		lmax, boost, want int
	}{
		{0, 1, 1},
		{2, 1, 2},
		{5, 1, 4},
		{6, 1, 8},
		{11, 1, 8},
		{12, 1, 16},
		{5, 2, 8},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NsideForLmax(tt.lmax, tt.boost), "lmax=%d boost=%d", tt.lmax, tt.boost)
	}
}

func TestNsideForLmaxMonotonic(t *testing.T) {
	prev := NsideForLmax(0, 1)
	for lmax := 1; lmax < 2000; lmax++ {
		nside := NsideForLmax(lmax, 1)
		require.GreaterOrEqual(t, nside, prev, "lmax=%d", lmax)
		require.GreaterOrEqual(t, 3*nside, lmax+1, "lmax=%d", lmax)
		prev = nside
	}
}

func TestNewGridInvalid(t *testing.T) {
	_, err := NewGrid(0)
	assert.True(t, errors.Is(err, ErrInvalidNside))
}

func TestNewGrid(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8} {
		g, err := NewGrid(nside)
		require.NoError(t, err)

		assert.Len(t, g.Rings, 4*nside-1)
		assert.Equal(t, Npix(nside), g.Npix())

		total := 0
		for _, r := range g.Rings {
			assert.Equal(t, total, r.FirstPixel)
			total += r.NPhi
			assert.InDelta(t, 1.0, r.CosTheta*r.CosTheta+r.SinTheta*r.SinTheta, 1e-12)
		}
		assert.Equal(t, Npix(nside), total)

		for _, p := range g.Positions {
			assert.Greater(t, p.Theta, 0.0)
			assert.Less(t, p.Theta, math.Pi)
			assert.GreaterOrEqual(t, p.Phi, 0.0)
			assert.Less(t, p.Phi, 2*math.Pi)
		}
	}
}

func TestNewGridFirstPixel(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)

	assert.InDelta(t, math.Acos(2.0/3.0), g.Positions[0].Theta, 1e-12)
	assert.InDelta(t, math.Pi/4, g.Positions[0].Phi, 1e-12)
	assert.InDelta(t, math.Pi/2, g.Positions[4].Theta, 1e-12)
	assert.InDelta(t, 0.0, g.Positions[4].Phi, 1e-12)
}

func TestGridSymmetry(t *testing.T) {
	g, err := NewGrid(4)
	require.NoError(t, err)

	n := len(g.Rings)
	for i := 0; i < n/2; i++ {
		north, south := g.Rings[i], g.Rings[n-1-i]
		assert.Equal(t, north.NPhi, south.NPhi)
		assert.InDelta(t, north.CosTheta, -south.CosTheta, 1e-12)
	}
}
