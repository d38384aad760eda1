package telescope

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// FeedPair is an ordered pair of feed indices with I < J.
type FeedPair struct {
	I, J int
}

// FeedPairs enumerates the upper triangle of feed pairs, row by row.
func FeedPairs(nfeed int) []FeedPair {
	if nfeed < 2 {
		return nil
	}
	pairs := make([]FeedPair, 0, nfeed*(nfeed-1)/2)
	for i := 0; i < nfeed; i++ {
		for j := i + 1; j < nfeed; j++ {
			pairs = append(pairs, FeedPair{I: i, J: j})
		}
	}
	return pairs
}

// Separation returns the baseline vector of a feed pair.
func Separation(positions []r2.Vec, p FeedPair) r2.Vec {
	return r2.Sub(positions[p.I], positions[p.J])
}

// MapHalfPlane folds a baseline onto the half plane u > 0, or u == 0 and
// v >= 1. Vectors with u == 0 and |v| < 1 are always negated, so folding is
// not idempotent there.
func MapHalfPlane(b r2.Vec) r2.Vec {
	if b.X < 0 {
		b = r2.Scale(-1, b)
	}
	if b.X == 0 && b.Y < 1 {
		b = r2.Scale(-1, b)
	}
	return b
}

// UniqueExact groups feed pairs whose folded separations are exactly equal.
// Groups are ordered by ascending u, then v. Each group is represented by
// its first pair in enumeration order, and redundancy counts its members.
func UniqueExact(positions []r2.Vec, pairs []FeedPair) ([]FeedPair, []int) {
	return uniqueBy(positions, pairs, func(b r2.Vec) r2.Vec { return b })
}

// UniqueTolerance groups feed pairs whose folded separations fall on the
// same cell of a grid with the given spacing. A non-positive tolerance
// behaves as UniqueExact.
func UniqueTolerance(positions []r2.Vec, pairs []FeedPair, tolerance float64) ([]FeedPair, []int) {
	if tolerance <= 0 {
		return UniqueExact(positions, pairs)
	}
	return uniqueBy(positions, pairs, func(b r2.Vec) r2.Vec {
		return r2.Vec{
			X: math.Round(b.X/tolerance) * tolerance,
			Y: math.Round(b.Y/tolerance) * tolerance,
		}
	})
}

func uniqueBy(positions []r2.Vec, pairs []FeedPair, key func(r2.Vec) r2.Vec) ([]FeedPair, []int) {
	type group struct {
		key   r2.Vec
		first FeedPair
		count int
	}

	index := make(map[r2.Vec]int)
	var groups []group
	for _, p := range pairs {
		k := key(MapHalfPlane(Separation(positions, p)))
		if gi, ok := index[k]; ok {
			groups[gi].count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, group{key: k, first: p, count: 1})
	}

	slices.SortFunc(groups, func(a, b group) int {
		if c := cmp.Compare(a.key.X, b.key.X); c != 0 {
			return c
		}
		return cmp.Compare(a.key.Y, b.key.Y)
	})

	unique := make([]FeedPair, len(groups))
	redundancy := make([]int, len(groups))
	for i, g := range groups {
		unique[i] = g.first
		redundancy[i] = g.count
	}
	return unique, redundancy
}

// MaxLM returns the l and m bandlimits of each baseline at the matching
// wavelength. width is the aperture extent along u in metres.
func MaxLM(baselines []r2.Vec, wavelengths []float64, width float64) (lmax, mmax []int) {
	lmax = make([]int, len(baselines))
	mmax = make([]int, len(baselines))
	for i, b := range baselines {
		lmax[i], mmax[i] = maxLM(b, wavelengths[i], width)
	}
	return lmax, mmax
}

func maxLM(b r2.Vec, wavelength, width float64) (lmax, mmax int) {
	umax := (math.Abs(b.X) + width) / wavelength
	vmax := math.Abs(b.Y) / wavelength

	m := math.Ceil(2 * math.Pi * umax)
	l := math.Ceil(math.Hypot(m, 2*math.Pi*vmax))
	return int(l), int(m)
}
