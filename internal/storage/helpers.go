package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && cErr != sql.ErrTxDone && *err == nil {
		*err = cErr
	}
}

func toConfigData(config any) (sql.NullString, error) {
	var data sql.NullString

	switch c := config.(type) {
	case nil:
	case string:
		data.Valid, data.String = true, c
	case []byte:
		data.Valid, data.String = true, string(c)
	default:
		p, err := json.Marshal(c)
		if err != nil {
			return data, fmt.Errorf("marshaling config: %w", err)
		}
		data.Valid, data.String = true, string(p)
	}
	return data, nil
}

func (r *runData) toRun() *spectrum.Run {
	run := spectrum.Run{
		ID:           r.ID,
		StartTime:    r.StartTime,
		Telescope:    r.Telescope,
		Polarisation: r.Polarisation,
		LSide:        r.LSide,
		NumBaselines: r.NumBaselines,
		NumFreqs:     r.NumFreqs,
	}
	if r.Config.Valid {
		run.Config = &r.Config.String
	}
	return &run
}

// encodeBlock splits a complex block into real and imaginary matrices and
// serialises each with gonum's binary format.
func encodeBlock(block *mat.CDense) (re, im []byte, err error) {
	r, c := block.Dims()
	realPart := mat.NewDense(r, c, nil)
	imagPart := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := block.At(i, j)
			realPart.Set(i, j, real(v))
			imagPart.Set(i, j, imag(v))
		}
	}

	if re, err = realPart.MarshalBinary(); err != nil {
		return nil, nil, fmt.Errorf("encoding real part: %w", err)
	}
	if im, err = imagPart.MarshalBinary(); err != nil {
		return nil, nil, fmt.Errorf("encoding imaginary part: %w", err)
	}
	return re, im, nil
}

func decodeBlock(re, im []byte) (*mat.CDense, error) {
	var realPart, imagPart mat.Dense
	if err := realPart.UnmarshalBinary(re); err != nil {
		return nil, fmt.Errorf("decoding real part: %w", err)
	}
	if err := imagPart.UnmarshalBinary(im); err != nil {
		return nil, fmt.Errorf("decoding imaginary part: %w", err)
	}

	r, c := realPart.Dims()
	if ir, ic := imagPart.Dims(); ir != r || ic != c {
		return nil, fmt.Errorf("block parts differ in shape: %dx%d and %dx%d", r, c, ir, ic)
	}

	block := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			block.Set(i, j, complex(realPart.At(i, j), imagPart.At(i, j)))
		}
	}
	return block, nil
}
