package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/roman-kulish/beam-transfer/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return readSpectrum(ctx, store, config, logger)
}

func readerOptions(config *Config) ([]storage.ReaderOption, []any) {
	opts := []storage.ReaderOption{storage.WithPolarisation(config.PolI, config.PolJ)}
	filters := []any{slog.Int("polI", config.PolI), slog.Int("polJ", config.PolJ)}

	switch {
	case config.MinFrequency != nil && config.MaxFrequency != nil:
		opts = append(opts, storage.WithFreqRange(*config.MinFrequency, *config.MaxFrequency))
		filters = append(filters,
			slog.String("minFreq", formatFrequency(*config.MinFrequency)),
			slog.String("maxFreq", formatFrequency(*config.MaxFrequency)))

	case config.MinFrequency != nil:
		opts = append(opts, storage.WithMinFreq(*config.MinFrequency))
		filters = append(filters, slog.String("minFreq", formatFrequency(*config.MinFrequency)))

	case config.MaxFrequency != nil:
		opts = append(opts, storage.WithMaxFreq(*config.MaxFrequency))
		filters = append(filters, slog.String("maxFreq", formatFrequency(*config.MaxFrequency)))
	}
	return opts, filters
}

// powerBounds returns the dynamic range bounds with any manual override
// applied.
func powerBounds(spec *SpectrumData, config *Config) PowerBounds {
	bounds := spec.Bounds(config.DynamicRange)
	if config.MinPower != nil {
		bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		bounds.Max = *config.MaxPower
	}
	return bounds
}

func readSpectrum(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) error {
	opts, filters := readerOptions(config)
	logger.Info("iterator configuration", filters...)

	iter, err := store.ReadSpectrum(ctx, config.RunID, config.Baseline, opts...)
	if err != nil {
		return err
	}
	defer iter.Close()

	run := iter.Run()
	logger.Info("reading transfer blocks",
		slog.Int64("run", run.ID),
		slog.String("telescope", run.Telescope),
		slog.String("polarisation", run.Polarisation),
		slog.Int("baseline", config.Baseline),
	)

	spec := NewSpectrumData()
	for iter.Next(ctx) {
		spec.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return err
	}

	bounds := powerBounds(spec, config)

	logger.Info("finished reading transfer blocks",
		slog.Group("stats",
			slog.Int("channels", spec.Height),
			slog.Int("multipoles", spec.Width),
			slog.String("minFreq", formatFrequency(spec.FrequencyMin)),
			slog.String("maxFreq", formatFrequency(spec.FrequencyMax)),
			slog.String("minPower", fmt.Sprintf("%0.2fdB", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdB", bounds.Max)),
		))

	renderer, err := NewSpectrumRenderer(RenderConfig{
		Scale:         config.Scale,
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
		Title:         fmt.Sprintf("Run %d, baseline %d, pol (%d, %d)", run.ID, config.Baseline, config.PolI, config.PolJ),
	})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", spec.Width*config.Scale),
			slog.Int("height", spec.Height*config.Scale),
		))

	img, err := renderer.Render(spec, bounds)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 98})
	}
	return err
}
