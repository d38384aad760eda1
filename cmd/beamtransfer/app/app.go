package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
	"github.com/roman-kulish/beam-transfer/internal/storage"
	"github.com/roman-kulish/beam-transfer/internal/telescope"
	"github.com/roman-kulish/beam-transfer/internal/telescope/cylinder"
	"github.com/roman-kulish/beam-transfer/internal/telescope/planar"
)

const (
	storageDir = "data"
)

// Run computes the configured transfer matrices and stores them in a new
// database under the data directory.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	tel, err := createTelescope(&config.Telescope, logger)
	if err != nil {
		return fmt.Errorf("failed to create telescope: %w", err)
	}

	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	runID, err := createRun(ctx, store, tel, config)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	o := NewOrchestrator(tel, store, runID, logger,
		WithWorkers(config.Settings.Workers),
		WithMaxBatchSize(config.Storage.MaxBatchSize),
		WithGlobalLmax(config.Transfer.UseGlobalLmax()),
	)
	return o.Run(ctx, config.Transfer.Frequencies)
}

type geometry interface {
	telescope.Geometry
	Beam() *cylinder.Beam
}

func createGeometry(config *GeometryConfig) (geometry, error) {
	switch config.Type {
	case GeometryCylinder:
		return cylinder.New(*config.Cylinder)
	case GeometryPlanar:
		return planar.New(*config.Planar)
	default:
		return nil, fmt.Errorf("creating geometry: unknown type '%s'", config.Type)
	}
}

func createPolarisation(config *TelescopeConfig, geo geometry) (telescope.Polarisation, error) {
	switch config.Polarisation {
	case PolarisationUnpolarised:
		return telescope.NewUnpolarised(geo.Beam())
	case PolarisationPolarised:
		return telescope.NewPolarised(geo.Beam(), geo.Beam(), telescope.WithFeedDirections(
			r2.Vec{X: config.FeedX[0], Y: config.FeedX[1]},
			r2.Vec{X: config.FeedY[0], Y: config.FeedY[1]},
		))
	default:
		return nil, fmt.Errorf("creating polarisation: unknown type '%s'", config.Polarisation)
	}
}

func createTelescope(config *TelescopeConfig, logger *slog.Logger) (*telescope.Telescope, error) {
	geo, err := createGeometry(&config.Geometry)
	if err != nil {
		return nil, err
	}

	pol, err := createPolarisation(config, geo)
	if err != nil {
		return nil, err
	}

	return telescope.New(geo, pol,
		telescope.WithLocation(config.Latitude, config.Longitude),
		telescope.WithFrequencyRange(config.Frequency.Lower, config.Frequency.Upper, config.Frequency.Channels),
		telescope.WithAccuracyBoost(config.AccuracyBoost),
		telescope.WithIterations(config.Iterations),
		telescope.WithLogger(logger),
	)
}

func createRun(ctx context.Context, store storage.Store, tel *telescope.Telescope, config *Config) (int64, error) {
	run := spectrum.Run{
		Telescope:    string(config.Telescope.Geometry.Type),
		Polarisation: tel.Polarisation().Name(),
		LSide:        2 * tel.Lmax(),
		NumBaselines: tel.NBase(),
		NumFreqs:     tel.NFreq(),
	}

	runID, err := store.CreateRun(ctx, &run, config.Telescope)
	if err != nil {
		return 0, err
	}

	pairs, redundancy := tel.FeedPairs(), tel.Redundancy()
	baselines := make([]spectrum.Baseline, tel.NBase())
	for i, b := range tel.Baselines() {
		baselines[i] = spectrum.Baseline{
			Index:      i,
			U:          b.X,
			V:          b.Y,
			Redundancy: redundancy[i],
			FeedI:      pairs[i].I,
			FeedJ:      pairs[i].J,
		}
	}
	if err = store.StoreBaselines(ctx, runID, baselines); err != nil {
		return 0, fmt.Errorf("storing baselines: %w", err)
	}

	wavelengths := tel.Wavelengths()
	channels := make([]spectrum.Channel, tel.NFreq())
	for i, f := range tel.Frequencies() {
		channels[i] = spectrum.Channel{Index: i, Frequency: f, Wavelength: wavelengths[i]}
	}
	if err = store.StoreChannels(ctx, runID, channels); err != nil {
		return 0, fmt.Errorf("storing channels: %w", err)
	}

	return runID, nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = config.DataDirectory
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(wd, dbPath)
		}
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("transfer_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}
