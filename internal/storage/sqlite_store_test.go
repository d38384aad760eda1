package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s := NewSqliteStore(filepath.Join(t.TempDir(), "transfer.sqlite"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBlock(lmax, mside int, scale float64) *mat.CDense {
	block := mat.NewCDense(lmax+1, mside, nil)
	for l := 0; l <= lmax; l++ {
		for m := 0; m < mside; m++ {
			block.Set(l, m, complex(scale*float64(l+1), -float64(m)))
		}
	}
	return block
}

func seedRun(t *testing.T, s *SqliteStore) int64 {
	t.Helper()
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, &spectrum.Run{
		Telescope:    "cylinder",
		Polarisation: "unpolarised",
		LSide:        4,
		NumBaselines: 2,
		NumFreqs:     3,
	}, map[string]int{"numFeeds": 2})
	require.NoError(t, err)

	require.NoError(t, s.StoreBaselines(ctx, runID, []spectrum.Baseline{
		{Index: 0, U: 0, V: 0.5, Redundancy: 2, FeedI: 0, FeedJ: 1},
		{Index: 1, U: 20, V: 0, Redundancy: 1, FeedI: 0, FeedJ: 2},
	}))
	require.NoError(t, s.StoreChannels(ctx, runID, []spectrum.Channel{
		{Index: 0, Frequency: 400, Wavelength: 0.75},
		{Index: 1, Frequency: 600, Wavelength: 0.5},
		{Index: 2, Frequency: 800, Wavelength: 0.375},
	}))

	var blocks []spectrum.TransferBlock
	for f := 2; f >= 0; f-- {
		blocks = append(blocks, spectrum.TransferBlock{
			BaselineIndex:  1,
			FrequencyIndex: f,
			Lmax:           3,
			Matrix:         testBlock(3, 7, float64(f+1)),
		})
	}
	require.NoError(t, s.StoreTransfers(ctx, runID, blocks))
	return runID
}

func TestSqliteStoreRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	runID := seedRun(t, s)

	run, err := s.Run(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "cylinder", run.Telescope)
	assert.Equal(t, "unpolarised", run.Polarisation)
	assert.Equal(t, 4, run.LSide)
	assert.Equal(t, 2, run.NumBaselines)
	assert.Equal(t, 3, run.NumFreqs)
	require.NotNil(t, run.Config)
	assert.JSONEq(t, `{"numFeeds":2}`, *run.Config)
	assert.False(t, run.StartTime.IsZero())

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)

	_, err = s.Run(ctx, runID+1)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSqliteStoreBaselinesAndChannels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	runID := seedRun(t, s)

	baselines, err := s.Baselines(ctx, runID)
	require.NoError(t, err)
	require.Len(t, baselines, 2)
	assert.Equal(t, spectrum.Baseline{Index: 1, U: 20, V: 0, Redundancy: 1, FeedI: 0, FeedJ: 2}, baselines[1])

	channels, err := s.Channels(ctx, runID)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, 600.0, channels[1].Frequency)
	assert.Equal(t, 0.5, channels[1].Wavelength)
}

func TestSqliteStoreManyRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, &spectrum.Run{Telescope: "planar", Polarisation: "polarised"}, nil)
	require.NoError(t, err)

	channels := make([]spectrum.Channel, 2*maxRowsPerInsert+7)
	for i := range channels {
		channels[i] = spectrum.Channel{Index: i, Frequency: float64(i), Wavelength: 1}
	}
	require.NoError(t, s.StoreChannels(ctx, runID, channels))

	got, err := s.Channels(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, got, len(channels))

	run, err := s.Run(ctx, runID)
	require.NoError(t, err)
	assert.Nil(t, run.Config)
}

func TestSqliteStoreTransfer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	runID := seedRun(t, s)

	block, err := s.Transfer(ctx, runID, 1, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, block.Lmax)
	assert.True(t, mat.CEqual(testBlock(3, 7, 3), block.Matrix))

	_, err = s.Transfer(ctx, runID, 0, 2, 0, 0)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSqliteStoreReadSpectrum(t *testing.T) {
	tests := []struct {
		name  string
		opts  []ReaderOption
		freqs []float64
	}{
		{name: "all channels", freqs: []float64{400, 600, 800}},
		{name: "min frequency", opts: []ReaderOption{WithMinFreq(500)}, freqs: []float64{600, 800}},
		{name: "max frequency", opts: []ReaderOption{WithMaxFreq(600)}, freqs: []float64{400, 600}},
		{name: "range", opts: []ReaderOption{WithFreqRange(600, 600)}, freqs: []float64{600}},
		{name: "other polarisation", opts: []ReaderOption{WithPolarisation(1, 2)}},
	}

	s := newTestStore(t)
	runID := seedRun(t, s)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			r, err := s.ReadSpectrum(ctx, runID, 1, tt.opts...)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, runID, r.Run().ID)

			var freqs []float64
			for r.Next(ctx) {
				sp := r.Current()
				freqs = append(freqs, sp.Frequency)
				assert.Equal(t, 1, sp.BaselineIndex)
				assert.Equal(t, 3, sp.Lmax)
				require.Len(t, sp.Points, 4)
				for l, p := range sp.Points {
					assert.Equal(t, l, p.L)
					assert.NotNil(t, p.Power)
				}
			}
			require.NoError(t, r.Error())
			assert.Equal(t, tt.freqs, freqs)
		})
	}
}

func TestSqliteStoreReadSpectrumInvalidRange(t *testing.T) {
	s := newTestStore(t)
	runID := seedRun(t, s)

	_, err := s.ReadSpectrum(context.Background(), runID, 1, WithFreqRange(800, 400))
	assert.Error(t, err)
}

func TestSqliteStoreCloseIdempotent(t *testing.T) {
	s := NewSqliteStore(filepath.Join(t.TempDir(), "transfer.sqlite"))
	seedRun(t, s)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
