package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

// maxRowsPerInsert keeps multi-row inserts below SQLite's bound parameter limit.
const maxRowsPerInsert = 500

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened and the schema initialised on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, run *spectrum.Run, config any) (runID int64, err error) {
	configData, err := toConfigData(config)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, run.Telescope, run.Polarisation, run.LSide, run.NumBaselines, run.NumFreqs, configData)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

func scanRun(row interface{ Scan(...any) error }) (*spectrum.Run, error) {
	var r runData
	if err := row.Scan(&r.ID, &r.StartTime, &r.Telescope, &r.Polarisation, &r.LSide, &r.NumBaselines, &r.NumFreqs, &r.Config); err != nil {
		return nil, err
	}
	return r.toRun(), nil
}

func (s *SqliteStore) Run(ctx context.Context, id int64) (run *spectrum.Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}
	return loadRun(ctx, db, id)
}

func loadRun(ctx context.Context, db *sql.DB, id int64) (run *spectrum.Run, err error) {
	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	if run, err = scanRun(stmt.QueryRowContext(ctx, id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("run %d: %w", id, ErrNoData)
			return
		}
		err = fmt.Errorf("scanning run: %w", err)
	}
	return
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []*spectrum.Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var run *spectrum.Run
		if run, err = scanRun(rows); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, run)
	}
	err = rows.Err()
	return
}

// insertRows runs a multi-row insert of n rows, each with the given number
// of columns, in chunks that fit SQLite's parameter limit.
func (s *SqliteStore) insertRows(ctx context.Context, prefix string, columns, n int, values func(i int) []any) (err error) {
	if n == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", columns), ", ") + ")"

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for chunk := range slices.Chunk(indices, maxRowsPerInsert) {
		var sb strings.Builder
		sb.WriteString(prefix)

		args := make([]any, 0, len(chunk)*columns)
		for k, i := range chunk {
			if k > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder)
			args = append(args, values(i)...)
		}

		if _, err = tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("batch inserting rows: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) StoreBaselines(ctx context.Context, runID int64, baselines []spectrum.Baseline) error {
	return s.insertRows(ctx, insertBaselinesSQL, 7, len(baselines), func(i int) []any {
		b := baselines[i]
		return []any{runID, b.Index, b.U, b.V, b.Redundancy, b.FeedI, b.FeedJ}
	})
}

func (s *SqliteStore) Baselines(ctx context.Context, runID int64) (baselines []spectrum.Baseline, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectBaselinesSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying baselines: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var b spectrum.Baseline
		if err = rows.Scan(&b.Index, &b.U, &b.V, &b.Redundancy, &b.FeedI, &b.FeedJ); err != nil {
			err = fmt.Errorf("scanning baseline: %w", err)
			return
		}
		baselines = append(baselines, b)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreChannels(ctx context.Context, runID int64, channels []spectrum.Channel) error {
	return s.insertRows(ctx, insertChannelsSQL, 4, len(channels), func(i int) []any {
		c := channels[i]
		return []any{runID, c.Index, c.Frequency, c.Wavelength}
	})
}

func (s *SqliteStore) Channels(ctx context.Context, runID int64) (channels []spectrum.Channel, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectChannelsSQL, runID)
	if err != nil {
		err = fmt.Errorf("querying channels: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c spectrum.Channel
		if err = rows.Scan(&c.Index, &c.Frequency, &c.Wavelength); err != nil {
			err = fmt.Errorf("scanning channel: %w", err)
			return
		}
		channels = append(channels, c)
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) StoreTransfers(ctx context.Context, runID int64, blocks []spectrum.TransferBlock) (err error) {
	if len(blocks) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertTransferSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, b := range blocks {
		re, im, encErr := encodeBlock(b.Matrix)
		if encErr != nil {
			return fmt.Errorf("baseline %d frequency %d: %w", b.BaselineIndex, b.FrequencyIndex, encErr)
		}
		if _, err = stmt.ExecContext(ctx, runID, b.BaselineIndex, b.FrequencyIndex, b.PolI, b.PolJ, b.Lmax, re, im); err != nil {
			return fmt.Errorf("inserting transfer block: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) Transfer(ctx context.Context, runID int64, baseline, frequency, polI, polJ int) (block *spectrum.TransferBlock, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	var data transferData
	err = db.QueryRowContext(ctx, selectTransferSQL, runID, baseline, frequency, polI, polJ).
		Scan(&data.Lmax, &data.DataReal, &data.DataImag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("baseline %d frequency %d: %w", baseline, frequency, ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("querying transfer block: %w", err)
	}

	matrix, err := decodeBlock(data.DataReal, data.DataImag)
	if err != nil {
		return nil, err
	}

	return &spectrum.TransferBlock{
		BaselineIndex:  baseline,
		FrequencyIndex: frequency,
		PolI:           polI,
		PolJ:           polJ,
		Lmax:           data.Lmax,
		Matrix:         matrix,
	}, nil
}

// ReadSpectrum creates a reader over the angular power spectra of one
// baseline of a run, in ascending frequency order. The returned reader must
// be closed after use to release database resources.
func (s *SqliteStore) ReadSpectrum(ctx context.Context, runID int64, baseline int, opts ...ReaderOption) (*SqliteSpectrumReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteSpectrumReader(ctx, db, runID, baseline, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
