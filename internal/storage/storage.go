package storage

import (
	"context"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

// Store persists transfer matrix runs.
type Store interface {
	// CreateRun records a new run and returns its ID. config is stored as
	// JSON unless it is already a string or byte slice.
	CreateRun(ctx context.Context, run *spectrum.Run, config any) (int64, error)

	// Run returns the metadata of a run.
	Run(ctx context.Context, id int64) (*spectrum.Run, error)

	// Runs returns every stored run.
	Runs(ctx context.Context) ([]*spectrum.Run, error)

	StoreBaselines(ctx context.Context, runID int64, baselines []spectrum.Baseline) error
	Baselines(ctx context.Context, runID int64) ([]spectrum.Baseline, error)

	StoreChannels(ctx context.Context, runID int64, channels []spectrum.Channel) error
	Channels(ctx context.Context, runID int64) ([]spectrum.Channel, error)

	// StoreTransfers writes a batch of blocks in a single transaction.
	StoreTransfers(ctx context.Context, runID int64, blocks []spectrum.TransferBlock) error

	// Transfer returns a single stored block, or ErrNoData.
	Transfer(ctx context.Context, runID int64, baseline, frequency, polI, polJ int) (*spectrum.TransferBlock, error)

	Close() error
}

var _ Store = (*SqliteStore)(nil)
