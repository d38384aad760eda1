package app

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

func testSpectrum() *SpectrumData {
	spec := NewSpectrumData()
	for f, mhz := range []float64{400, 500, 600} {
		points := make([]spectrum.AngularPoint, 4)
		for l := range points {
			points[l].L = l
			if l != 3 {
				points[l].Power = ptr(float64(-10 * (l + f)))
			}
		}
		spec.Update(&spectrum.AngularSpectrum{FrequencyIndex: f, Frequency: mhz, Lmax: 3, Points: points})
	}
	return spec
}

func TestSpectrumDataUpdate(t *testing.T) {
	spec := testSpectrum()

	assert.Equal(t, 4, spec.Width)
	assert.Equal(t, 3, spec.Height)
	assert.Equal(t, 400.0, spec.FrequencyMin)
	assert.Equal(t, 600.0, spec.FrequencyMax)
	assert.Nil(t, spec.Rows[0][3])

	lo, hi, ok := spec.PowerRange()
	require.True(t, ok)
	assert.Equal(t, -40.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestRenderWithoutAnnotations(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{Scale: 2, ColorTheme: GrayscaleTheme, ColorMapSize: 11, NoAnnotations: true})
	require.NoError(t, err)

	img, err := r.Render(testSpectrum(), PowerBounds{Min: -40, Max: 0})
	require.NoError(t, err)

	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	// l = 0 at 400 MHz carries the maximum power; l = 3 carries none.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 0xff}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(7, 1))
}

func TestRenderShortRow(t *testing.T) {
	spec := NewSpectrumData()
	spec.Update(&spectrum.AngularSpectrum{Frequency: 400, Lmax: 3, Points: []spectrum.AngularPoint{
		{L: 0, Power: ptr(0)}, {L: 1, Power: ptr(-10)}, {L: 2, Power: ptr(-20)}, {L: 3, Power: ptr(-30)},
	}})
	spec.Update(&spectrum.AngularSpectrum{Frequency: 500, Lmax: 1, Points: []spectrum.AngularPoint{
		{L: 0, Power: ptr(0)}, {L: 1, Power: ptr(-10)},
	}})

	r, err := NewSpectrumRenderer(RenderConfig{Scale: 1, ColorTheme: GrayscaleTheme, ColorMapSize: 11, NoAnnotations: true})
	require.NoError(t, err)

	img, err := r.Render(spec, PowerBounds{Min: -30, Max: 0})
	require.NoError(t, err)

	// Multipoles beyond the bandlimit of the second channel carry no power.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 0xff}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(3, 1))
}

func TestRenderWithAnnotations(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{Title: "Run 1"})
	require.NoError(t, err)

	img, err := r.Render(testSpectrum(), PowerBounds{Min: -40, Max: 0})
	require.NoError(t, err)

	assert.Equal(t, 4*defaultScale+defaultLeftBorder+defaultRightBorder, img.Bounds().Dx())
	assert.Equal(t, 3*defaultScale+defaultTopBorder+defaultBottomBorder, img.Bounds().Dy())
}

func TestRenderEmpty(t *testing.T) {
	r, err := NewSpectrumRenderer(RenderConfig{})
	require.NoError(t, err)

	_, err = r.Render(NewSpectrumData(), defaultPowerBounds())
	assert.Error(t, err)
}

func TestNiceMultipoleStep(t *testing.T) {
	tests := []struct {
		lmax, width, want int
	}{
		{0, 100, 1},
		{10, 800, 1},
		{100, 800, 10},
		{300, 1200, 20},
		{1000, 400, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, niceMultipoleStep(tt.lmax, tt.width))
	}
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "400.0 MHz", formatFrequency(400))
	assert.Equal(t, "1.2 GHz", formatFrequency(1200))
}
