package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseConfig(t *testing.T) {
	c, err := parseConfig(newFlagSet(), []string{
		"-db", "run.sqlite", "-r", "2", "-b", "3", "-pi", "1", "-pj", "2",
		"-o", "out", "-f", "JPEG", "-theme", "thermal", "-scale", "2",
		"-min-power", "-40", "-max-freq", "500", "-range", "40",
	})
	require.NoError(t, err)

	assert.Equal(t, "run.sqlite", c.DBPath)
	assert.Equal(t, int64(2), c.RunID)
	assert.Equal(t, 3, c.Baseline)
	assert.Equal(t, 1, c.PolI)
	assert.Equal(t, 2, c.PolJ)
	assert.Equal(t, "out.jpeg", c.OutputFile)
	assert.Equal(t, ImageFormat(ImageJPEG), c.Format)
	assert.Equal(t, ThermalTheme, c.Theme)
	assert.Equal(t, 2, c.Scale)
	require.NotNil(t, c.MinPower)
	assert.Equal(t, -40.0, *c.MinPower)
	assert.Nil(t, c.MaxPower)
	assert.Nil(t, c.MinFrequency)
	require.NotNil(t, c.MaxFrequency)
	assert.Equal(t, 500.0, *c.MaxFrequency)
	assert.Equal(t, 40.0, c.DynamicRange)
}

func TestParseConfigDefaults(t *testing.T) {
	c, err := parseConfig(newFlagSet(), []string{"-db", "run.sqlite", "-o", "out"})
	require.NoError(t, err)

	assert.Equal(t, "out.png", c.OutputFile)
	assert.Equal(t, defaultScale, c.Scale)
	assert.Equal(t, defaultDynamicRange, c.DynamicRange)
	assert.Nil(t, c.MinPower)
	assert.Nil(t, c.MaxPower)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no db", []string{"-o", "out"}},
		{"no output", []string{"-db", "x"}},
		{"bad run", []string{"-db", "x", "-o", "out", "-r", "0"}},
		{"bad baseline", []string{"-db", "x", "-o", "out", "-b", "-1"}},
		{"bad format", []string{"-db", "x", "-o", "out", "-f", "gif"}},
		{"bad theme", []string{"-db", "x", "-o", "out", "-theme", "neon"}},
		{"bad scale", []string{"-db", "x", "-o", "out", "-scale", "0"}},
		{"bad range", []string{"-db", "x", "-o", "out", "-range", "0"}},
		{"power order", []string{"-db", "x", "-o", "out", "-min-power", "0", "-max-power", "-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(newFlagSet(), tt.args)
			assert.Error(t, err)
		})
	}
}
