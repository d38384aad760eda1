package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
	"github.com/roman-kulish/beam-transfer/internal/storage"
	"github.com/roman-kulish/beam-transfer/internal/telescope"
	"github.com/roman-kulish/beam-transfer/internal/telescope/cylinder"
)

type memoryStore struct {
	storage.Store

	mu      sync.Mutex
	batches int
	blocks  []spectrum.TransferBlock
}

func (s *memoryStore) StoreTransfers(_ context.Context, _ int64, blocks []spectrum.TransferBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	s.blocks = append(s.blocks, blocks...)
	return nil
}

func testTelescope(t *testing.T, polarised bool) *telescope.Telescope {
	t.Helper()

	geo, err := cylinder.New(cylinder.Config{NumCylinders: 1, NumFeeds: 3, CylinderWidth: 1, FeedSpacing: 0.5})
	require.NoError(t, err)

	var pol telescope.Polarisation
	if polarised {
		pol, err = telescope.NewPolarised(geo.Beam(), geo.Beam())
	} else {
		pol, err = telescope.NewUnpolarised(geo.Beam())
	}
	require.NoError(t, err)

	tel, err := telescope.New(geo, pol, telescope.WithFrequencyRange(10, 20, 3))
	require.NoError(t, err)
	return tel
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrchestratorRun(t *testing.T) {
	tests := []struct {
		name      string
		polarised bool
		freqs     []int
		workers   int
		slots     int
	}{
		{name: "unpolarised all channels", freqs: nil, workers: 2, slots: 1},
		{name: "unpolarised one channel", freqs: []int{1}, workers: 2, slots: 1},
		{name: "single worker", freqs: []int{0}, workers: 1, slots: 1},
		{name: "polarised", polarised: true, freqs: []int{0, 2}, workers: 2, slots: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel := testTelescope(t, tt.polarised)
			store := &memoryStore{}

			o := NewOrchestrator(tel, store, 1, discardLogger(), WithWorkers(tt.workers), WithMaxBatchSize(2))
			require.NoError(t, o.Run(context.Background(), tt.freqs))

			nfreq := len(tt.freqs)
			if nfreq == 0 {
				nfreq = tel.NFreq()
			}
			want := nfreq * tel.NBase() * tt.slots
			assert.Len(t, store.blocks, want)
			assert.Equal(t, (tel.NBase()*tt.slots+1)/2*nfreq, store.batches)

			for _, b := range store.blocks {
				lmax, mmax, err := tel.Bandlimit(b.BaselineIndex, b.FrequencyIndex)
				require.NoError(t, err)

				r, c := b.Matrix.Dims()
				assert.Equal(t, lmax, b.Lmax)
				assert.Equal(t, lmax+1, r)
				assert.Equal(t, 2*mmax+1, c)
			}
		})
	}
}

func TestOrchestratorCancelled(t *testing.T) {
	tel := testTelescope(t, false)
	store := &memoryStore{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(tel, store, 1, discardLogger())
	assert.ErrorIs(t, o.Run(ctx, nil), context.Canceled)
	assert.Empty(t, store.blocks)
}

func TestPolarisationSlots(t *testing.T) {
	assert.Equal(t, [][]int{nil}, polarisationSlots(nil))
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, polarisationSlots([]int{2, 2}))
}

func TestTrimBlock(t *testing.T) {
	// lside 2: columns m = 0, 1, 2, -2, -1
	block := mat.NewCDense(3, 5, []complex128{
		0, 1, 2, -2, -1,
		10, 11, 12, -12, -11,
		20, 21, 22, -22, -21,
	})

	got := trimBlock(block, 1, 1)
	want := mat.NewCDense(2, 3, []complex128{
		0, 1, -1,
		10, 11, -11,
	})
	assert.True(t, mat.CEqual(want, got))
}
