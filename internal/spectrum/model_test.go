package spectrum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPowerSpectrum(t *testing.T) {
	block := mat.NewCDense(3, 5, []complex128{
		1, 0, 0, 0, 0,
		3, 4i, 0, 0, 0,
		0, 0, 0, 0, 0,
	})

	points := PowerSpectrum(block)
	require.Len(t, points, 3)

	require.NotNil(t, points[0].Power)
	assert.InDelta(t, 0, *points[0].Power, 1e-12)

	require.NotNil(t, points[1].Power)
	assert.InDelta(t, 10*1.3979400086720377, *points[1].Power, 1e-9)
	assert.Equal(t, 1, points[1].L)

	assert.Nil(t, points[2].Power)
}

func TestRunJSONConfig(t *testing.T) {
	config := `{"geometry":"cylinder"}`
	data, err := json.Marshal(Run{ID: 1, Config: &config})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, config, decoded["config"])

	var run Run
	require.NoError(t, json.Unmarshal(data, &run))
	require.NotNil(t, run.Config)
	assert.Equal(t, config, *run.Config)

	data, err = json.Marshal(Run{ID: 2})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "config")
}
