package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestFeedPairs(t *testing.T) {
	assert.Empty(t, FeedPairs(1))
	assert.Equal(t, []FeedPair{{0, 1}, {0, 2}, {1, 2}}, FeedPairs(3))

	for n := 2; n < 20; n++ {
		assert.Len(t, FeedPairs(n), n*(n-1)/2)
	}
}

func TestMapHalfPlane(t *testing.T) {
	tests := []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"positive u", r2.Vec{X: 2, Y: -3}, r2.Vec{X: 2, Y: -3}},
		{"negative u", r2.Vec{X: -2, Y: 3}, r2.Vec{X: 2, Y: -3}},
		{"zero u positive v", r2.Vec{X: 0, Y: 2}, r2.Vec{X: 0, Y: 2}},
		{"zero u negative v", r2.Vec{X: 0, Y: -2}, r2.Vec{X: 0, Y: 2}},
		{"zero u unit v", r2.Vec{X: 0, Y: 1}, r2.Vec{X: 0, Y: 1}},
		{"zero u small positive v", r2.Vec{X: 0, Y: 0.5}, r2.Vec{X: 0, Y: -0.5}},
		{"zero u small negative v", r2.Vec{X: 0, Y: -0.5}, r2.Vec{X: 0, Y: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapHalfPlane(tt.in))
		})
	}
}

func TestMapHalfPlaneNegation(t *testing.T) {
	vectors := []r2.Vec{
		{X: 1, Y: 0}, {X: 3.5, Y: -2}, {X: -0.25, Y: 7}, {X: 0, Y: 4}, {X: 0, Y: -1.5}, {X: 20, Y: 0.5},
	}
	for _, v := range vectors {
		folded := MapHalfPlane(v)
		assert.Equal(t, folded, MapHalfPlane(r2.Scale(-1, v)), "%v", v)
		assert.Equal(t, folded, MapHalfPlane(folded), "%v", v)
	}
}

func TestUniqueExactLine(t *testing.T) {
	positions := make([]r2.Vec, 6)
	for i := range positions {
		positions[i] = r2.Vec{X: float64(i)}
	}

	pairs, redundancy := UniqueExact(positions, FeedPairs(6))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, redundancy)
	assert.Len(t, pairs, 5)
	for k, p := range pairs {
		assert.Equal(t, r2.Vec{X: float64(k + 1)}, MapHalfPlane(Separation(positions, p)))
	}
	assert.Equal(t, FeedPair{I: 0, J: 1}, pairs[0])
}

func TestUniqueRedundancySum(t *testing.T) {
	positions := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2.5, Y: 0.5}}
	pairs := FeedPairs(len(positions))

	for _, tol := range []float64{0, 0.1, 1} {
		_, redundancy := UniqueTolerance(positions, pairs, tol)
		sum := 0
		for _, r := range redundancy {
			sum += r
		}
		assert.Equal(t, len(pairs), sum, "tolerance %g", tol)
	}
}

func TestUniqueTolerance(t *testing.T) {
	positions := []r2.Vec{{X: 0}, {X: 1}, {X: 2.01}}

	exact, _ := UniqueTolerance(positions, FeedPairs(3), 0)
	assert.Len(t, exact, 3)

	clustered, redundancy := UniqueTolerance(positions, FeedPairs(3), 0.1)
	assert.Len(t, clustered, 2)
	assert.Equal(t, []int{2, 1}, redundancy)
}

func TestMaxLM(t *testing.T) {
	tests := []struct {
		name       string
		baseline   r2.Vec
		wavelength float64
		width      float64
		lmax, mmax int
	}{
		{"unit baseline", r2.Vec{X: 1, Y: 1}, 1, 0, 10, 7},
		{"east-west", r2.Vec{X: -1}, 1, 0, 7, 7},
		{"north-south with width", r2.Vec{Y: 0}, 1, 20, 126, 126},
		{"longer wavelength", r2.Vec{X: 1, Y: 1}, 2, 0, 6, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lmax, mmax := MaxLM([]r2.Vec{tt.baseline}, []float64{tt.wavelength}, tt.width)
			assert.Equal(t, []int{tt.lmax}, lmax)
			assert.Equal(t, []int{tt.mmax}, mmax)
			assert.GreaterOrEqual(t, lmax[0], mmax[0])
		})
	}
}
