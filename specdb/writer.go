package specdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/spectro/config"
	"github.com/RyanBlaney/spectro/logging"
	"github.com/RyanBlaney/spectro/spectrogram"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Writer saves spectrograms to sqlite files. In write mode, files are named
// base_000.ext, base_001.ext, ... and a new one is started whenever the
// current file exceeds MaxSize; if only one file was needed it is renamed to
// base.ext on Close. In append mode everything goes into base.ext.
type Writer struct {
	base, ext string
	config    config.DatabaseConfig
	logger    logging.Logger

	db       *sql.DB
	filename string
	written  []string

	group       string
	fileCounter int
	specCounter int
	total       int
	ignored     int

	shape  [2]int
	shaped bool
	closed bool
}

var _ spectrogram.Sink = (*Writer)(nil)

// NewWriter prepares a writer for output. No file is created until the
// first Write.
func NewWriter(output string, cfg config.DatabaseConfig, logger logging.Logger) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	if output == "" {
		return nil, fmt.Errorf("output file name is empty")
	}

	ext := filepath.Ext(output)
	return &Writer{
		base:   strings.TrimSuffix(output, ext),
		ext:    ext,
		config: cfg,
		group:  CleanGroup(cfg.Group),
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "spec_writer",
			"output":    output,
		}),
	}, nil
}

// Cd selects the group subsequent spectrograms are written to
func (w *Writer) Cd(group string) error {
	if w.closed {
		return ErrClosed
	}
	w.group = CleanGroup(group)
	return nil
}

// Group returns the current group
func (w *Writer) Group() string {
	return w.group
}

// Ignored returns how many spectrograms were skipped for having the wrong shape
func (w *Writer) Ignored() int {
	return w.ignored
}

// Count returns how many spectrograms were stored
func (w *Writer) Count() int {
	return w.total
}

// Written returns the files closed so far
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

// Write stores s in the current group. Annotations beyond MaxAnnotations
// are dropped and annotation times are stored relative to s.TMin.
func (w *Writer) Write(s *spectrogram.Spectrogram) error {
	return w.WriteContext(context.Background(), s)
}

// WriteContext is Write with a context for the database calls
func (w *Writer) WriteContext(ctx context.Context, s *spectrogram.Spectrogram) error {
	if w.closed {
		return ErrClosed
	}

	shape := [2]int{s.TBins(), s.FBins()}
	if !w.shaped {
		w.shape, w.shaped = shape, true
	}
	if shape != w.shape && w.config.IgnoreWrongShape {
		w.ignored++
		w.logger.Debug("Ignoring spectrogram with wrong shape", logging.Fields{
			"shape":    shape,
			"expected": w.shape,
		})
		return nil
	}

	if err := w.openFile(); err != nil {
		return err
	}

	if len(s.Annotations) > w.config.MaxAnnotations {
		w.logger.Warn("Dropping annotations beyond the limit", logging.Fields{
			"annotations": len(s.Annotations),
			"limit":       w.config.MaxAnnotations,
		})
	}

	if err := insertSpectrogram(ctx, w.db, uuid.NewString(), w.group, s, w.config.MaxAnnotations); err != nil {
		return fmt.Errorf("failed to write spectrogram to %s: %w", w.filename, err)
	}
	w.specCounter++
	w.total++

	if w.config.Mode == config.ModeAppend {
		return nil
	}
	size, err := databaseSize(w.db)
	if err != nil {
		return err
	}
	if size > uint64(w.config.MaxSize) {
		w.logger.Debug("Database file reached its size limit", logging.Fields{
			"file":  w.filename,
			"size":  humanize.Bytes(size),
			"limit": w.config.MaxSize.String(),
		})
		return w.closeFile(false)
	}
	return nil
}

// Close closes the current file. The writer cannot be used afterwards.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.closeFile(true)
	w.closed = true
	if w.ignored > 0 {
		w.logger.Info("Ignored spectrograms with wrong shape", logging.Fields{"ignored": w.ignored})
	}
	return err
}

func (w *Writer) openFile() error {
	if w.db != nil {
		return nil
	}

	filename := w.base + w.ext
	if w.config.Mode != config.ModeAppend {
		filename = fmt.Sprintf("%s_%03d%s", w.base, w.fileCounter, w.ext)
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace %s: %w", filename, err)
		}
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	db, err := openDatabase(filename)
	if err != nil {
		return err
	}
	w.db = db
	w.filename = filename
	w.fileCounter++
	w.specCounter = 0
	return nil
}

// closeFile closes the open file, if any. A final close of the only file
// written in write mode renames it to the base name.
func (w *Writer) closeFile(final bool) error {
	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", w.filename, err)
	}

	name := w.filename
	if final && w.fileCounter == 1 && w.config.Mode != config.ModeAppend {
		name = w.base + w.ext
		if err := os.Rename(w.filename, name); err != nil {
			return fmt.Errorf("failed to rename %s: %w", w.filename, err)
		}
	}
	w.written = append(w.written, name)

	fields := logging.Fields{"file": name, "spectrograms": w.specCounter}
	if info, err := os.Stat(name); err == nil {
		fields["size"] = humanize.Bytes(uint64(info.Size()))
	}
	w.logger.Info("Spectrograms saved", fields)
	w.specCounter = 0
	return nil
}

func insertSpectrogram(ctx context.Context, db *sql.DB, id, group string, s *spectrogram.Spectrogram, maxAnnotations int) error {
	files, err := marshalText(s.Files)
	if err != nil {
		return err
	}
	fileVector, err := marshalText(s.FileVector)
	if err != nil {
		return err
	}
	timeVector, err := marshalText(s.TimeVector)
	if err != nil {
		return err
	}

	bpo := 0
	if scale, ok := s.Scale.(spectrogram.LogScale); ok {
		bpo = scale.BinsPerOctave
	}
	var timestamp sql.NullString
	if !s.Timestamp.IsZero() {
		timestamp = sql.NullString{String: s.Timestamp.Format(time.RFC3339Nano), Valid: true}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO spectrograms (id, grp, kind, time_min, time_res, freq_min, freq_res,
			freq_crop_low, freq_crop_high, bins_per_octave, decibel, nfft, hop,
			time_bins, freq_bins, data, files, file_vector, time_vector, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, group, s.Kind.String(), s.TMin, s.TRes, s.FMin, s.FRes,
		s.FCropLow, s.FCropHigh, bpo, s.Decibel, s.NFFT, s.Hop, s.TBins(), s.FBins(), encodeImage(s.Image),
		files, fileVector, timeVector, timestamp)
	if err != nil {
		return err
	}

	// annotations are stored relative to the start time
	annotations := s.Annotations.ResolveInf(s.FMax()).Limit(maxAnnotations).Shift(-s.TMin)
	for i, a := range annotations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO annotations (spec_id, idx, label, t_start, t_end, f_start, f_end)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, a.Label, a.Box.TStart, a.Box.TEnd, a.Box.FStart, a.Box.FEnd)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
