// Package specdb stores spectrograms in sqlite database files. A Writer
// streams spectrograms into groups, rotating to a new file when the current
// one grows past a size limit; a Reader loads them back and selects them by
// annotation label.
package specdb

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrClosed is returned when writing to a closed Writer
	ErrClosed = errors.New("spectrogram database is closed")
	// ErrNotFound is returned when a requested spectrogram id is absent
	ErrNotFound = errors.New("spectrogram not found")
)

const driverName = "sqlite"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS spectrograms (
	id              TEXT PRIMARY KEY,
	grp             TEXT NOT NULL,
	kind            TEXT NOT NULL,
	time_min        REAL NOT NULL DEFAULT 0,
	time_res        REAL NOT NULL,
	freq_min        REAL NOT NULL,
	freq_res        REAL NOT NULL,
	freq_crop_low   INTEGER NOT NULL DEFAULT 0,
	freq_crop_high  INTEGER NOT NULL DEFAULT 0,
	bins_per_octave INTEGER NOT NULL DEFAULT 0,
	decibel         INTEGER NOT NULL DEFAULT 0,
	nfft            INTEGER NOT NULL DEFAULT 0,
	hop             INTEGER NOT NULL DEFAULT 0,
	time_bins       INTEGER NOT NULL,
	freq_bins       INTEGER NOT NULL,
	data            BLOB NOT NULL,
	files           TEXT NOT NULL,
	file_vector     TEXT NOT NULL,
	time_vector     TEXT NOT NULL,
	timestamp       TEXT
);
CREATE INDEX IF NOT EXISTS idx_spectrograms_grp ON spectrograms(grp);

CREATE TABLE IF NOT EXISTS annotations (
	spec_id TEXT NOT NULL REFERENCES spectrograms(id) ON DELETE CASCADE,
	idx     INTEGER NOT NULL,
	label   INTEGER NOT NULL,
	t_start REAL NOT NULL,
	t_end   REAL NOT NULL,
	f_start REAL NOT NULL,
	f_end   REAL NOT NULL,
	PRIMARY KEY (spec_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_annotations_label ON annotations(label);
`

func openDatabase(filename string) (*sql.DB, error) {
	db, err := sql.Open(driverName, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", filename, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables in %s: %w", filename, err)
	}
	return db, nil
}

// databaseSize returns the size of the database in bytes
func databaseSize(db *sql.DB) (uint64, error) {
	var size int64
	err := db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("failed to query database size: %w", err)
	}
	return uint64(size), nil
}

// CleanGroup normalises a group path: absolute, slash separated, without a
// trailing slash.
func CleanGroup(group string) string {
	group = strings.TrimSpace(group)
	if group == "" {
		return "/"
	}
	return path.Clean("/" + group)
}

// encodeImage packs a time-major image as little-endian float64 values
func encodeImage(img [][]float64) []byte {
	if len(img) == 0 {
		return nil
	}
	cols := len(img[0])
	buf := make([]byte, 8*len(img)*cols)
	for i, row := range img {
		for j, v := range row {
			binary.LittleEndian.PutUint64(buf[8*(i*cols+j):], math.Float64bits(v))
		}
	}
	return buf
}

func decodeImage(buf []byte, rows, cols int) ([][]float64, error) {
	if rows <= 0 || cols <= 0 || len(buf) != 8*rows*cols {
		return nil, fmt.Errorf("image blob of %d bytes does not hold %dx%d values", len(buf), rows, cols)
	}
	img := make([][]float64, rows)
	for i := range img {
		img[i] = make([]float64, cols)
		for j := range img[i] {
			img[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*(i*cols+j):]))
		}
	}
	return img, nil
}

func marshalText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
