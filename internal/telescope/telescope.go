// Package telescope computes beam-transfer matrices of a transit
// interferometer: for every unique baseline and frequency channel, the
// spherical harmonic coefficients of that baseline's response on the sky.
package telescope

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/healpix"
	"github.com/roman-kulish/beam-transfer/internal/sphtrans"
	"github.com/roman-kulish/beam-transfer/internal/units"
)

const (
	DefaultLatitude      = 45.0  // Degrees
	DefaultLongitude     = 0.0   // Degrees
	DefaultFreqLower     = 400.0 // MHz
	DefaultFreqUpper     = 800.0 // MHz
	DefaultNumFreq       = 50
	DefaultAccuracyBoost = 1
	DefaultIterations    = sphtrans.DefaultIterations
)

// Geometry describes the physical layout of the feeds.
type Geometry interface {
	// FeedPositions returns the position of every feed in metres, as (east, north).
	FeedPositions() []r2.Vec

	// UWidth returns the aperture extent along u in metres.
	UWidth() float64

	// Unique groups feed pairs into unique baselines, returning one
	// representative pair and the redundancy of each group.
	Unique(pairs []FeedPair) ([]FeedPair, []int)
}

// Telescope holds the configuration of an interferometer and computes its
// transfer matrices. A Telescope keeps per-resolution caches and is not safe
// for concurrent use; use Clone to give each worker its own copy.
type Telescope struct {
	geometry     Geometry
	polarisation Polarisation

	latitude, longitude  float64
	zenith               healpix.Pointing
	freqLower, freqUpper float64
	numFreq              int

	accuracyBoost int
	iterations    int

	logger   *slog.Logger
	progress func(done, total int)

	// Derived from the geometry, computed on first use.
	baselines    []r2.Vec
	redundancy   []int
	feedPairs    []FeedPair
	hasBaselines bool

	frequencies []float64
}

// WithLocation sets the telescope latitude and longitude in degrees.
func WithLocation(latitude, longitude float64) func(t *Telescope) {
	return func(t *Telescope) {
		t.latitude, t.longitude = latitude, longitude
	}
}

// WithFrequencyRange sets the band in MHz and the number of channels.
func WithFrequencyRange(lower, upper float64, num int) func(t *Telescope) {
	return func(t *Telescope) {
		t.freqLower, t.freqUpper, t.numFreq = lower, upper, num
	}
}

// WithAccuracyBoost raises the pixelisation used for each bandlimit.
func WithAccuracyBoost(boost int) func(t *Telescope) {
	return func(t *Telescope) {
		t.accuracyBoost = boost
	}
}

// WithIterations sets the number of Jacobi iterations of the forward transform.
func WithIterations(n int) func(t *Telescope) {
	return func(t *Telescope) {
		t.iterations = n
	}
}

// WithLogger sets the logger for the telescope. A nil logger keeps the
// discard default.
func WithLogger(logger *slog.Logger) func(t *Telescope) {
	return func(t *Telescope) {
		if logger == nil {
			return
		}
		t.logger = logger.With(slog.String("polarisation", t.polarisation.Name()))
	}
}

// WithProgress registers a callback invoked after each pair is computed.
func WithProgress(fn func(done, total int)) func(t *Telescope) {
	return func(t *Telescope) {
		t.progress = fn
	}
}

// New creates a Telescope for the given geometry and polarisation variant.
func New(geometry Geometry, polarisation Polarisation, options ...func(t *Telescope)) (*Telescope, error) {
	if geometry == nil {
		return nil, fmt.Errorf("%w: telescope requires a geometry", ErrUnimplementedCapability)
	}
	if polarisation == nil {
		return nil, fmt.Errorf("%w: telescope requires a polarisation variant", ErrUnimplementedCapability)
	}

	t := Telescope{
		geometry:      geometry,
		polarisation:  polarisation,
		latitude:      DefaultLatitude,
		longitude:     DefaultLongitude,
		freqLower:     DefaultFreqLower,
		freqUpper:     DefaultFreqUpper,
		numFreq:       DefaultNumFreq,
		accuracyBoost: DefaultAccuracyBoost,
		iterations:    DefaultIterations,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&t)
	}

	if t.numFreq < 1 {
		return nil, fmt.Errorf("number of frequencies must be positive: %d given", t.numFreq)
	}
	if t.freqLower <= 0 || t.freqUpper <= 0 {
		return nil, fmt.Errorf("frequencies must be positive: %g-%g MHz given", t.freqLower, t.freqUpper)
	}
	t.zenith = zenith(t.latitude, t.longitude)

	return &t, nil
}

func zenith(latitude, longitude float64) healpix.Pointing {
	return healpix.Pointing{
		Theta: math.Pi/2 - units.Radians(latitude),
		Phi:   math.Mod(math.Mod(units.Radians(longitude), 2*math.Pi)+2*math.Pi, 2*math.Pi),
	}
}

// Zenith returns the direction of the local zenith.
func (t *Telescope) Zenith() healpix.Pointing {
	return t.zenith
}

// Polarisation returns the polarisation variant.
func (t *Telescope) Polarisation() Polarisation {
	return t.polarisation
}

// Geometry returns the feed layout.
func (t *Telescope) Geometry() Geometry {
	return t.geometry
}

// SetGeometry replaces the feed layout and discards derived baselines.
func (t *Telescope) SetGeometry(g Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: telescope requires a geometry", ErrUnimplementedCapability)
	}
	t.geometry = g
	t.hasBaselines = false
	t.baselines, t.redundancy, t.feedPairs = nil, nil, nil
	return nil
}

// SetFrequencyRange replaces the band and discards derived frequencies.
func (t *Telescope) SetFrequencyRange(lower, upper float64, num int) error {
	if num < 1 {
		return fmt.Errorf("number of frequencies must be positive: %d given", num)
	}
	if lower <= 0 || upper <= 0 {
		return fmt.Errorf("frequencies must be positive: %g-%g MHz given", lower, upper)
	}
	t.freqLower, t.freqUpper, t.numFreq = lower, upper, num
	t.frequencies = nil
	return nil
}

// CalculateBaselines derives the unique baselines, their redundancy and a
// representative feed pair for each. Results are kept until the geometry
// changes.
func (t *Telescope) CalculateBaselines() {
	if t.hasBaselines {
		return
	}

	positions := t.geometry.FeedPositions()
	pairs, redundancy := t.geometry.Unique(FeedPairs(len(positions)))

	baselines := make([]r2.Vec, len(pairs))
	for i, p := range pairs {
		baselines[i] = Separation(positions, p)
	}

	t.baselines, t.redundancy, t.feedPairs = baselines, redundancy, pairs
	t.hasBaselines = true

	t.logger.Debug("baselines calculated",
		"feeds", len(positions),
		"pairs", len(positions)*(len(positions)-1)/2,
		"unique", len(pairs),
	)
}

// Baselines returns the separation of the representative pair of each unique baseline.
func (t *Telescope) Baselines() []r2.Vec {
	t.CalculateBaselines()
	return t.baselines
}

// Redundancy returns how many feed pairs share each unique baseline.
func (t *Telescope) Redundancy() []int {
	t.CalculateBaselines()
	return t.redundancy
}

// FeedPairs returns the representative feed pair of each unique baseline.
func (t *Telescope) FeedPairs() []FeedPair {
	t.CalculateBaselines()
	return t.feedPairs
}

// NBase returns the number of unique baselines.
func (t *Telescope) NBase() int {
	return len(t.Baselines())
}

// NFeed returns the number of feeds.
func (t *Telescope) NFeed() int {
	return len(t.geometry.FeedPositions())
}

// Frequencies returns the channel centres in MHz.
func (t *Telescope) Frequencies() []float64 {
	if t.frequencies == nil {
		t.frequencies = units.Linspace(t.freqLower, t.freqUpper, t.numFreq)
	}
	return t.frequencies
}

// Wavelengths returns the channel wavelengths in metres.
func (t *Telescope) Wavelengths() []float64 {
	return units.Wavelengths(t.Frequencies())
}

// NFreq returns the number of frequency channels.
func (t *Telescope) NFreq() int {
	return len(t.Frequencies())
}

func (t *Telescope) frequency(f int) Frequency {
	mhz := t.Frequencies()[f]
	return Frequency{Index: f, MHz: mhz, Wavelength: units.Wavelength(mhz)}
}

// Lmax returns the largest l bandlimit over every baseline and frequency.
func (t *Telescope) Lmax() int {
	lmax, _ := t.maxLM()
	return lmax
}

// Mmax returns the largest m bandlimit over every baseline and frequency.
func (t *Telescope) Mmax() int {
	_, mmax := t.maxLM()
	return mmax
}

func (t *Telescope) maxLM() (lmax, mmax int) {
	width := t.geometry.UWidth()
	for _, wl := range t.Wavelengths() {
		for _, b := range t.Baselines() {
			l, m := maxLM(b, wl, width)
			lmax, mmax = max(lmax, l), max(mmax, m)
		}
	}
	return lmax, mmax
}

// Bandlimit returns the l and m bandlimits used for the transfer matrix of
// baseline b at frequency f. Both are twice the baseline's intrinsic limits.
func (t *Telescope) Bandlimit(b, f int) (lmax, mmax int, err error) {
	if err = t.checkIndices([]int{b}, []int{f}); err != nil {
		return 0, 0, err
	}
	l, m := maxLM(t.baselines[b], t.frequency(f).Wavelength, t.geometry.UWidth())
	return 2 * l, 2 * m, nil
}

// Clone returns an independent copy of the telescope with empty
// per-resolution caches, for use from another goroutine.
func (t *Telescope) Clone() *Telescope {
	t.CalculateBaselines()
	t.Frequencies()

	c := *t
	c.polarisation = t.polarisation.clone()
	return &c
}
