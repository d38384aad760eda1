package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (
                  start_time,
                  telescope,
                  polarisation,
                  lside,
                  num_baselines,
                  num_freqs,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?)`

	selectRunSQL = `
SELECT 
    id, 
    start_time, 
    telescope, 
    polarisation, 
    lside,
    num_baselines,
    num_freqs,
    config 
FROM runs 
WHERE 
    id = ?`

	selectRunsSQL = `
SELECT 
    id, 
    start_time, 
    telescope, 
    polarisation, 
    lside,
    num_baselines,
    num_freqs,
    config 
FROM runs
ORDER BY id`

	insertBaselinesSQL = `
INSERT INTO baselines (run_id,
                       baseline_index,
                       u,
                       v,
                       redundancy,
                       feed_i,
                       feed_j)
VALUES `

	selectBaselinesSQL = `
SELECT 
    baseline_index, 
    u, 
    v, 
    redundancy, 
    feed_i, 
    feed_j 
FROM baselines 
WHERE 
    run_id = ? 
ORDER BY baseline_index`

	insertChannelsSQL = `
INSERT INTO channels (run_id,
                      frequency_index,
                      frequency,
                      wavelength)
VALUES `

	selectChannelsSQL = `
SELECT 
    frequency_index, 
    frequency, 
    wavelength 
FROM channels 
WHERE 
    run_id = ? 
ORDER BY frequency_index`

	insertTransferSQL = `
INSERT OR REPLACE INTO transfers (run_id,
                                  baseline_index,
                                  frequency_index,
                                  pol_i,
                                  pol_j,
                                  lmax,
                                  data_real,
                                  data_imag)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectTransferSQL = `
SELECT 
    lmax, 
    data_real, 
    data_imag 
FROM transfers 
WHERE 
    run_id = ? 
    AND baseline_index = ? 
    AND frequency_index = ? 
    AND pol_i = ? 
    AND pol_j = ?`

	selectFilterValuesSQL = `
SELECT 
    MIN(frequency), 
    MAX(frequency) 
FROM channels 
WHERE 
    run_id = ?`

	selectSpectrumSQL = `
SELECT 
    t.frequency_index, 
    c.frequency, 
    t.lmax, 
    t.data_real, 
    t.data_imag
FROM transfers t
    JOIN channels c 
        ON c.run_id = t.run_id 
        AND c.frequency_index = t.frequency_index
WHERE 
    t.run_id = ?
    AND t.baseline_index = ?
    AND t.pol_i = ?
    AND t.pol_j = ?
    AND c.frequency BETWEEN ? AND ?
ORDER BY c.frequency`
)

var (
	//go:embed schema.sql
	initSchemaSQL string

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_transfers_baseline ON transfers (run_id, baseline_index, pol_i, pol_j);
CREATE INDEX IF NOT EXISTS idx_channels_frequency ON channels (run_id, frequency);`
)
