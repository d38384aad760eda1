package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

// ErrNoData indicates either that no data exists for the given parameters,
// or that all available data has been read from the spectrum reader.
var ErrNoData = fmt.Errorf("no data available")

// SpectrumReader provides an iterator-based interface for reading the angular
// power spectra of a baseline, one frequency channel at a time, with optional
// frequency filtering.
type SpectrumReader interface {
	// Run returns metadata about the run this reader is accessing.
	Run() *spectrum.Run

	// Next advances the iterator and returns true if there is another
	// spectrum to read, false when the iteration is complete or if an error
	// occurred.
	Next(context.Context) bool

	// Current returns the current spectrum in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *spectrum.AngularSpectrum

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish
	// between end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

var _ SpectrumReader = (*SqliteSpectrumReader)(nil)

// ReaderOption configures a SpectrumReader with specific filtering criteria.
type ReaderOption func(*SqliteSpectrumReader)

// WithMinFreq sets the minimum frequency filter, in MHz.
// Channels below this value will be excluded.
func WithMinFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &f
	}
}

// WithMaxFreq sets the maximum frequency filter, in MHz.
// Channels above this value will be excluded.
func WithMaxFreq(f float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.maxFreq = &f
	}
}

// WithFreqRange sets both minimum and maximum frequency filters.
func WithFreqRange(minFreq, maxFreq float64) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.minFreq = &minFreq
		r.maxFreq = &maxFreq
	}
}

// WithPolarisation selects the polarisation block to read. The default is
// (0, 0), the only block of an unpolarised run.
func WithPolarisation(polI, polJ int) ReaderOption {
	return func(r *SqliteSpectrumReader) {
		r.polI, r.polJ = polI, polJ
	}
}

func newSqliteSpectrumReader(ctx context.Context, db *sql.DB, runID int64, baseline int, opts ...ReaderOption) (*SqliteSpectrumReader, error) {
	sr := &SqliteSpectrumReader{
		db:       db,
		runID:    runID,
		baseline: baseline,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

// SqliteSpectrumReader implements SpectrumReader for SQLite database backend.
type SqliteSpectrumReader struct {
	db *sql.DB

	runID    int64
	run      *spectrum.Run
	baseline int
	polI     int
	polJ     int

	minFreq *float64 // Optional minimum frequency filter
	maxFreq *float64 // Optional maximum frequency filter

	current *spectrum.AngularSpectrum
	rows    *sql.Rows
	err     error
}

func (sr *SqliteSpectrumReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}
	if sr.runID <= 0 {
		return errors.New("run ID required")
	}
	if sr.baseline < 0 {
		return fmt.Errorf("invalid baseline index %d", sr.baseline)
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading run", fn: sr.loadRun},
		{msg: "initializing filters", fn: sr.initFilters},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSpectrumReader) loadRun(ctx context.Context) (err error) {
	sr.run, err = loadRun(ctx, sr.db, sr.runID)
	return
}

func (sr *SqliteSpectrumReader) initFilters(ctx context.Context) (err error) {
	if sr.minFreq != nil && sr.maxFreq != nil {
		if *sr.minFreq > *sr.maxFreq {
			return fmt.Errorf("min frequency %f is greater than max frequency %f", *sr.minFreq, *sr.maxFreq)
		}
		return nil
	}

	stmt, err := sr.db.PrepareContext(ctx, selectFilterValuesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var minFreq, maxFreq sql.NullFloat64
	if err = stmt.QueryRowContext(ctx, sr.runID).Scan(&minFreq, &maxFreq); err != nil {
		return fmt.Errorf("scanning filters data: %w", err)
	}
	if !minFreq.Valid || !maxFreq.Valid {
		return fmt.Errorf("run %d has no channels: %w", sr.runID, ErrNoData)
	}

	if sr.minFreq == nil {
		sr.minFreq = &minFreq.Float64
	}
	if sr.maxFreq == nil {
		sr.maxFreq = &maxFreq.Float64
	}
	return nil
}

func (sr *SqliteSpectrumReader) initQuery(ctx context.Context) (err error) {
	stmt, err := sr.db.PrepareContext(ctx, selectSpectrumSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	sr.rows, err = stmt.QueryContext(ctx, sr.runID, sr.baseline, sr.polI, sr.polJ, *sr.minFreq, *sr.maxFreq)
	return
}

func (sr *SqliteSpectrumReader) scanSpectrum() (*spectrum.AngularSpectrum, error) {
	var data transferData
	if err := sr.rows.Scan(&data.FrequencyIndex, &data.Frequency, &data.Lmax, &data.DataReal, &data.DataImag); err != nil {
		return nil, fmt.Errorf("scanning transfer block: %w", err)
	}

	block, err := decodeBlock(data.DataReal, data.DataImag)
	if err != nil {
		return nil, fmt.Errorf("frequency %d: %w", data.FrequencyIndex, err)
	}

	return &spectrum.AngularSpectrum{
		BaselineIndex:  sr.baseline,
		FrequencyIndex: data.FrequencyIndex,
		Frequency:      data.Frequency,
		Lmax:           data.Lmax,
		Points:         spectrum.PowerSpectrum(block),
	}, nil
}

func (sr *SqliteSpectrumReader) Run() *spectrum.Run {
	return sr.run
}

func (sr *SqliteSpectrumReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		sr.err = ctx.Err()
		return false
	default:
	}

	if !sr.rows.Next() {
		sr.current = nil
		sr.err = ErrNoData
		return false
	}

	sr.current, sr.err = sr.scanSpectrum()
	return sr.err == nil
}

func (sr *SqliteSpectrumReader) Current() *spectrum.AngularSpectrum {
	return sr.current
}

func (sr *SqliteSpectrumReader) Error() error {
	if sr.err != nil && !errors.Is(sr.err, ErrNoData) {
		return sr.err
	}
	if sr.rows != nil {
		return sr.rows.Err()
	}
	return nil
}

func (sr *SqliteSpectrumReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.current = nil
		sr.rows = nil
		return err
	}
	return nil
}
