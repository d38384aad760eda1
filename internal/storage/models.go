package storage

import (
	"database/sql"
	"time"
)

type runData struct {
	ID           int64
	StartTime    time.Time
	Telescope    string
	Polarisation string
	LSide        int
	NumBaselines int
	NumFreqs     int
	Config       sql.NullString
}

type transferData struct {
	FrequencyIndex int
	Frequency      float64
	Lmax           int
	DataReal       []byte
	DataImag       []byte
}
