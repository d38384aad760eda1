package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
	"github.com/roman-kulish/beam-transfer/internal/storage"
	"github.com/roman-kulish/beam-transfer/internal/telescope"
)

const maxBatchSize = 100

// WithMaxBatchSize sets the maximum number of transfer blocks to store
// within a single database transaction.
func WithMaxBatchSize(size int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.maxBatchSize = size
	}
}

// WithWorkers sets the number of frequency channels computed concurrently.
func WithWorkers(n int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithGlobalLmax sizes every block for the telescope's largest bandlimit
// rather than the largest bandlimit of the channel being computed.
func WithGlobalLmax(global bool) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.globalLmax = global
	}
}

// Orchestrator computes the transfer matrices of a telescope one frequency
// channel at a time, spreading channels over workers that each own a clone
// of the telescope, and stores the resulting blocks.
type Orchestrator struct {
	telescope *telescope.Telescope
	store     storage.Store
	runID     int64
	logger    *slog.Logger

	workers      int
	maxBatchSize int
	globalLmax   bool
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(tel *telescope.Telescope, store storage.Store, runID int64, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		telescope:    tel,
		store:        store,
		runID:        runID,
		logger:       logger,
		workers:      1,
		maxBatchSize: maxBatchSize,
		globalLmax:   true,
	}

	for _, option := range options {
		option(&o)
	}

	o.workers = max(o.workers, 1)
	o.maxBatchSize = max(o.maxBatchSize, 1)
	return &o
}

// Run computes and stores the given frequency channels, or every channel
// when freqs is empty. Cancelling ctx stops the run between channels.
func (o *Orchestrator) Run(ctx context.Context, freqs []int) error {
	if len(freqs) == 0 {
		freqs = make([]int, o.telescope.NFreq())
		for i := range freqs {
			freqs[i] = i
		}
	}

	o.logger.Info("starting run",
		"run", o.runID,
		"baselines", o.telescope.NBase(),
		"frequencies", len(freqs),
		"workers", o.workers,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, f := range freqs {
		if gctx.Err() != nil {
			break
		}

		tel := o.telescope.Clone()
		g.Go(func() error {
			return o.processFrequency(gctx, tel, f)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	o.logger.Info("run complete", "run", o.runID, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (o *Orchestrator) processFrequency(ctx context.Context, tel *telescope.Telescope, f int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bl := make([]int, tel.NBase())
	for i := range bl {
		bl[i] = i
	}

	arr, err := tel.TransferMatrices(bl, []int{f}, o.globalLmax)
	if err != nil {
		return fmt.Errorf("frequency %d: %w", f, err)
	}

	blocks, err := o.collectBlocks(tel, arr, bl, f)
	if err != nil {
		return fmt.Errorf("frequency %d: %w", f, err)
	}

	for chunk := range slices.Chunk(blocks, o.maxBatchSize) {
		if err = o.store.StoreTransfers(ctx, o.runID, chunk); err != nil {
			return fmt.Errorf("frequency %d: storing transfer blocks: %w", f, err)
		}
	}

	o.logger.Info("frequency stored",
		"frequency", f,
		"blocks", humanize.Comma(int64(len(blocks))),
		"memory", humanize.IBytes(arr.Bytes()),
	)
	return nil
}

// collectBlocks trims every block of arr to its own bandlimit.
func (o *Orchestrator) collectBlocks(tel *telescope.Telescope, arr *telescope.MatrixArray, bl []int, f int) ([]spectrum.TransferBlock, error) {
	slots := polarisationSlots(arr.PolShape)
	blocks := make([]spectrum.TransferBlock, 0, len(bl)*len(slots))

	for i, b := range bl {
		lmax, mmax, err := tel.Bandlimit(b, f)
		if err != nil {
			return nil, err
		}
		lmax, mmax = min(lmax, arr.LSide), min(mmax, arr.LSide)

		for _, slot := range slots {
			block := spectrum.TransferBlock{
				BaselineIndex:  b,
				FrequencyIndex: f,
				Lmax:           lmax,
				Matrix:         trimBlock(arr.Block(i, slot...), lmax, mmax),
			}
			if len(slot) == 2 {
				block.PolI, block.PolJ = slot[0], slot[1]
			}
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

// polarisationSlots enumerates the polarisation indices of a block shape.
func polarisationSlots(shape []int) [][]int {
	slots := [][]int{nil}
	for _, n := range shape {
		next := make([][]int, 0, len(slots)*n)
		for _, s := range slots {
			for p := 0; p < n; p++ {
				next = append(next, append(slices.Clone(s), p))
			}
		}
		slots = next
	}
	return slots
}

// trimBlock copies rows 0..lmax and orders -mmax..mmax of block into a new
// (lmax+1)×(2·mmax+1) matrix, negative orders last.
func trimBlock(block mat.CMatrix, lmax, mmax int) *mat.CDense {
	_, cols := block.Dims()
	out := mat.NewCDense(lmax+1, 2*mmax+1, nil)
	for l := 0; l <= lmax; l++ {
		for m := 0; m <= mmax; m++ {
			out.Set(l, m, block.At(l, m))
		}
		for m := 1; m <= mmax; m++ {
			out.Set(l, 2*mmax+1-m, block.At(l, cols-m))
		}
	}
	return out
}
