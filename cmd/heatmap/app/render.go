package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 72.0
	fontSize       = 12.0
	tickMarkHeight = 5
	pixelsPerLabel = 80.0

	defaultTopBorder    = 30
	defaultLeftBorder   = 90
	defaultBottomBorder = 40
	defaultRightBorder  = 20
)

// BorderConfig defines the sizes of white space around the heatmap
type BorderConfig struct {
	Top    int // Space for multipole scale
	Left   int // Space for frequency scale
	Bottom int // Space for information bar
	Right  int
}

// RenderConfig holds all configuration options for heatmap rendering
type RenderConfig struct {
	Scale         int // Pixels per cell
	FontSize      float64
	ColorTheme    ColorTheme
	ColorMapSize  int
	NoAnnotations bool
	Title         string // Prefix of the information bar
	BorderConfig  BorderConfig
}

// SpectrumRenderer draws the angular power of a baseline against frequency.
type SpectrumRenderer struct {
	config RenderConfig
}

func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if config.Scale == 0 {
		config.Scale = defaultScale
	}
	if config.Scale < 0 {
		return nil, fmt.Errorf("scale must be positive: %d given", config.Scale)
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.ColorMapSize == 0 {
		config.ColorMapSize = DefaultColorMapSize
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &SpectrumRenderer{config: config}, nil
}

// Render creates an image of the spectrum with annotations, coloring power
// within bounds.
func (r *SpectrumRenderer) Render(spec *SpectrumData, bounds PowerBounds) (*image.RGBA, error) {
	if spec.Width == 0 || spec.Height == 0 {
		return nil, fmt.Errorf("nothing to render: %dx%d cells", spec.Width, spec.Height)
	}

	b := r.config.BorderConfig
	width, height := spec.Width*r.config.Scale, spec.Height*r.config.Scale
	img := image.NewRGBA(image.Rect(0, 0, width+b.Left+b.Right, height+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+width, b.Top+height)
	r.renderSpectrum(img, area, spec, NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize))

	if r.config.NoAnnotations {
		return img, nil
	}

	ann, err := newAnnotator(r.config)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, area, spec, bounds); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}
	return img, nil
}

func (r *SpectrumRenderer) renderSpectrum(img *image.RGBA, area image.Rectangle, spec *SpectrumData, cm *ColorMapper) {
	s := r.config.Scale
	for y, row := range spec.Rows {
		for x := 0; x < spec.Width; x++ {
			c := NoPowerColor
			if x < len(row) {
				c = cm.GetColor(row[x])
			}
			cell := image.Rect(area.Min.X+x*s, area.Min.Y+y*s, area.Min.X+(x+1)*s, area.Min.Y+(y+1)*s)
			draw.Draw(img, cell, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
}

type annotator struct {
	context  *freetype.Context
	config   RenderConfig
	fontFace font.Face
}

func newAnnotator(config RenderConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, spec *SpectrumData, bounds PowerBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func() error
	}{
		{"drawing multipole scale", func() error { return a.drawMultipoleScale(img, area, spec) }},
		{"drawing frequency scale", func() error { return a.drawFrequencyScale(img, area, spec) }},
		{"drawing info bar", func() error { return a.drawInfoBar(img, spec, bounds) }},
	}
	for _, op := range ops {
		if err := op.fn(); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawMultipoleScale(img *image.RGBA, area image.Rectangle, spec *SpectrumData) error {
	step := niceMultipoleStep(spec.Width-1, area.Dx())
	textY := area.Min.Y - tickMarkHeight - 3

	for l := 0; l < spec.Width; l += step {
		x := area.Min.X + l*a.config.Scale + a.config.Scale/2

		for y := area.Min.Y - tickMarkHeight; y < area.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := humanize.Comma(int64(l))
		width := font.MeasureString(a.fontFace, label)
		if _, err := a.context.DrawString(label, freetype.Pt(x-width.Round()/2, textY)); err != nil {
			return fmt.Errorf("drawing multipole label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, area image.Rectangle, spec *SpectrumData) error {
	rowsPerLabel := max(1, int(math.Ceil(float64(a.fontHeight()*2)/float64(a.config.Scale))))
	metrics := a.fontFace.Metrics()

	step := 0.0
	if spec.Height > 1 {
		step = (spec.FrequencyMax - spec.FrequencyMin) / float64(spec.Height-1)
	}

	for row := 0; row < spec.Height; row += rowsPerLabel {
		y := area.Min.Y + row*a.config.Scale + a.config.Scale/2

		for x := area.Min.X - tickMarkHeight; x < area.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		label := formatFrequency(spec.FrequencyMin + float64(row)*step)
		width := font.MeasureString(a.fontFace, label)
		textY := y + a.fontHeight()/2 - metrics.Descent.Round()
		if _, err := a.context.DrawString(label, freetype.Pt(area.Min.X-tickMarkHeight-3-width.Round(), textY)); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, spec *SpectrumData, bounds PowerBounds) error {
	var sb strings.Builder

	if a.config.Title != "" {
		sb.WriteString(a.config.Title)
		sb.WriteString("; ")
	}
	sb.WriteString(fmt.Sprintf("Freq: %s - %s", formatFrequency(spec.FrequencyMin), formatFrequency(spec.FrequencyMax)))
	sb.WriteString(fmt.Sprintf("; l: 0 - %d", spec.Width-1))
	if lo, hi, ok := spec.PowerRange(); ok {
		sb.WriteString(fmt.Sprintf("; Power: %0.1f - %0.1f dB", lo, hi))
	}
	sb.WriteString(fmt.Sprintf("; Scale: %0.1f - %0.1f dB", bounds.Min, bounds.Max))

	metrics := a.fontFace.Metrics()
	textY := img.Bounds().Max.Y - (a.config.BorderConfig.Bottom-a.fontHeight())/2 - metrics.Descent.Round()

	if _, err := a.context.DrawString(sb.String(), freetype.Pt(a.config.BorderConfig.Left, textY)); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// niceMultipoleStep picks a label spacing of 1, 2 or 5 times a power of ten
// so that labels sit at least pixelsPerLabel apart.
func niceMultipoleStep(lmax, width int) int {
	if lmax <= 0 || width <= 0 {
		return 1
	}

	target := float64(lmax) * pixelsPerLabel / float64(width)
	for mag := 1; ; mag *= 10 {
		for _, m := range []int{1, 2, 5} {
			if step := m * mag; float64(step) >= target {
				return step
			}
		}
	}
}

// formatFrequency formats a frequency given in MHz.
func formatFrequency(mhz float64) string {
	value, prefix := humanize.ComputeSI(mhz * 1e6)
	return fmt.Sprintf("%0.1f %sHz", value, prefix)
}
