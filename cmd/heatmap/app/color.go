package app

import (
	"image/color"
	"math"
)

const (
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	JungleTheme    ColorTheme = "jungle"
	ThermalTheme   ColorTheme = "thermal"
	MarineTheme    ColorTheme = "marine"
	EnhancedTheme  ColorTheme = "enhanced"

	DefaultColorMapSize = 256
)

type ColorTheme string

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
	EnhancedTheme:  {},
}

// NoPowerColor marks multipoles that carry no power.
var NoPowerColor color.Color = color.Black

// ColorMapper maps power levels to a pre-computed gradient of the theme.
type ColorMapper struct {
	colorMap      []color.Color
	bounds        PowerBounds
	theme         func(float64) color.Color
	size          int
	powerPerIndex float64 // Power range per index step
}

func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

func NewColorMapperWithSize(theme ColorTheme, bounds PowerBounds, size int) *ColorMapper {
	if size < 2 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap: make([]color.Color, size),
		theme:    GetColorTheme(theme),
		size:     size,
	}
	cm.UpdateBounds(bounds)
	return cm
}

func (cm *ColorMapper) UpdateBounds(bounds PowerBounds) {
	cm.bounds = bounds
	cm.powerPerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)

	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}
}

func (cm *ColorMapper) GetColor(power *float64) color.Color {
	if power == nil {
		return NoPowerColor
	}
	if cm.powerPerIndex <= 0 {
		return cm.colorMap[cm.size-1]
	}

	pwr := math.Max(cm.bounds.Min, math.Min(*power, cm.bounds.Max))
	index := int((pwr - cm.bounds.Min) / cm.powerPerIndex)
	return cm.colorMap[min(max(index, 0), cm.size-1)]
}

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGB converts HSV color space to RGB
func (hsv HSV) RGB() color.Color {
	h, s, v := hsv.H, hsv.S, math.Min(1, math.Max(0, hsv.V))

	if s <= 0.0 {
		rgb := uint8(v * 255)
		return color.RGBA{R: rgb, G: rgb, B: rgb, A: 0xff}
	}

	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}

// PowerToColorEnhanced provides a multi-stage mapping with better
// differentiation in the lower power ranges.
func PowerToColorEnhanced(normalizedPower float64) color.Color {
	power := math.Max(0, math.Min(1, normalizedPower))
	enhancedPower := math.Pow(power, 0.7)

	var hsv HSV
	switch {
	case power < 0.25: // Black -> Blue
		hsv = HSV{H: 240, S: 1.0, V: enhancedPower * 4}
	case power < 0.5: // Blue -> Cyan
		hsv = HSV{H: 240 - ((power - 0.25) * 240), S: 1.0, V: enhancedPower * 1.5}
	case power < 0.75: // Cyan -> Yellow
		p := (power - 0.5) * 4
		hsv = HSV{H: 180 - (p * 120), S: 1.0, V: math.Min(1.0, enhancedPower*1.5)}
	default: // Yellow -> Red
		p := (power - 0.75) * 4
		hsv = HSV{H: 60 - (p * 60), S: 1.0, V: 1.0}
	}

	return hsv.RGB()
}

// GetColorTheme returns the gradient function of a theme. Unknown themes
// fall back to the enhanced gradient.
func GetColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme: // Blue -> Red
		return func(power float64) color.Color {
			return HSV{
				H: 240 - (power * 240),
				S: 0.9 + (power * 0.1),
				V: math.Pow(power, 0.7),
			}.RGB()
		}

	case GrayscaleTheme: // Black -> White
		return func(power float64) color.Color {
			v := math.Pow(power, 0.7) * 255
			return color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 0xff}
		}

	case JungleTheme: // Dark Green -> Yellow
		return func(power float64) color.Color {
			return HSV{
				H: 120 - (power * 60),
				S: 1.0,
				V: 0.3 + (math.Pow(power, 0.6) * 0.7),
			}.RGB()
		}

	case ThermalTheme: // Black -> Red -> Yellow -> White
		return func(power float64) color.Color {
			if power < 0.33 {
				return color.RGBA{R: uint8(power * 3 * 255), A: 0xff}
			} else if power < 0.66 {
				return color.RGBA{R: 255, G: uint8((power - 0.33) * 3 * 255), A: 0xff}
			}
			return color.RGBA{R: 255, G: 255, B: uint8(math.Min(1, (power-0.66)*3) * 255), A: 0xff}
		}

	case MarineTheme: // Deep Blue -> Cyan -> White
		return func(power float64) color.Color {
			return HSV{
				H: 240 - (power * 60),
				S: 1.0 - (power * 0.8),
				V: 0.3 + (math.Pow(power, 0.6) * 0.7),
			}.RGB()
		}

	default:
		return PowerToColorEnhanced
	}
}
