package specdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/RyanBlaney/spectro/annotation"
	"github.com/RyanBlaney/spectro/spectrogram"
)

// Reader loads spectrograms from a database file written by Writer
type Reader struct {
	db       *sql.DB
	filename string
}

// Open opens an existing database file
func Open(filename string) (*Reader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db, err := openDatabase(filename)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db, filename: filename}, nil
}

// Close closes the database file
func (r *Reader) Close() error {
	return r.db.Close()
}

// Groups lists the groups holding spectrograms, sorted by name
func (r *Reader) Groups() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT grp FROM spectrograms ORDER BY grp")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Count returns the number of spectrograms in group
func (r *Reader) Count(group string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM spectrograms WHERE grp = ?", CleanGroup(group)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count spectrograms: %w", err)
	}
	return n, nil
}

// IDs returns the ids of group in the order they were written
func (r *Reader) IDs(group string) ([]string, error) {
	return r.queryIDs("SELECT id FROM spectrograms WHERE grp = ? ORDER BY rowid", CleanGroup(group))
}

// FilterByLabel returns the ids of the spectrograms in group carrying at
// least one of labels, in the order they were written.
func (r *Reader) FilterByLabel(group string, labels ...int) ([]string, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	args := []any{CleanGroup(group)}
	for _, l := range labels {
		args = append(args, l)
	}
	query := `
		SELECT s.id FROM spectrograms s
		WHERE s.grp = ? AND EXISTS (
			SELECT 1 FROM annotations a
			WHERE a.spec_id = s.id AND a.label IN (?` + strings.Repeat(", ?", len(labels)-1) + `))
		ORDER BY s.rowid`
	return r.queryIDs(query, args...)
}

func (r *Reader) queryIDs(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spectrogram ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Load returns the spectrograms of group with the given ids, or all of them
// in write order when no ids are given.
func (r *Reader) Load(group string, ids ...string) ([]*spectrogram.Spectrogram, error) {
	return r.LoadContext(context.Background(), group, ids...)
}

// LoadContext is Load with a context for the database calls
func (r *Reader) LoadContext(ctx context.Context, group string, ids ...string) ([]*spectrogram.Spectrogram, error) {
	if len(ids) == 0 {
		var err error
		if ids, err = r.IDs(group); err != nil {
			return nil, err
		}
	}

	out := make([]*spectrogram.Spectrogram, 0, len(ids))
	for _, id := range ids {
		s, err := r.load(ctx, CleanGroup(group), id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Reader) load(ctx context.Context, group, id string) (*spectrogram.Spectrogram, error) {
	var (
		kind                          string
		tmin, tres, fmin, fres        float64
		cropLow, cropHigh             int
		bpo, nfft, hop, rows, cols    int
		decibel                       bool
		data                          []byte
		files, fileVector, timeVector string
		timestamp                     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT kind, time_min, time_res, freq_min, freq_res, freq_crop_low, freq_crop_high,
			bins_per_octave, decibel, nfft, hop,
			time_bins, freq_bins, data, files, file_vector, time_vector, timestamp
		FROM spectrograms WHERE grp = ? AND id = ?`, group, id).
		Scan(&kind, &tmin, &tres, &fmin, &fres, &cropLow, &cropHigh, &bpo, &decibel, &nfft, &hop,
			&rows, &cols, &data, &files, &fileVector, &timeVector, &timestamp)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s in group %s: %w", id, group, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spectrogram %s: %w", id, err)
	}

	img, err := decodeImage(data, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("spectrogram %s: %w", id, err)
	}
	k, err := spectrogram.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("spectrogram %s: %w", id, err)
	}

	opts := []spectrogram.Option{
		spectrogram.WithTime(tmin, tres),
		spectrogram.WithFrequency(fmin, fres),
		spectrogram.WithKind(k),
		spectrogram.WithDecibel(decibel),
		spectrogram.WithNFFT(nfft),
	}
	if bpo > 0 {
		opts = append(opts, spectrogram.WithScale(spectrogram.LogScale{BinsPerOctave: bpo}))
	}
	if timestamp.Valid {
		ts, err := time.Parse(time.RFC3339Nano, timestamp.String)
		if err != nil {
			return nil, fmt.Errorf("spectrogram %s: invalid timestamp: %w", id, err)
		}
		opts = append(opts, spectrogram.WithTimestamp(ts))
	}

	s, err := spectrogram.New(img, opts...)
	if err != nil {
		return nil, fmt.Errorf("spectrogram %s: %w", id, err)
	}
	s.Hop = hop
	s.FCropLow, s.FCropHigh = cropLow, cropHigh

	if err := json.Unmarshal([]byte(files), &s.Files); err != nil {
		return nil, fmt.Errorf("spectrogram %s: invalid file list: %w", id, err)
	}
	if err := json.Unmarshal([]byte(fileVector), &s.FileVector); err != nil {
		return nil, fmt.Errorf("spectrogram %s: invalid file vector: %w", id, err)
	}
	if err := json.Unmarshal([]byte(timeVector), &s.TimeVector); err != nil {
		return nil, fmt.Errorf("spectrogram %s: invalid time vector: %w", id, err)
	}
	if len(s.FileVector) != rows || len(s.TimeVector) != rows || len(s.Files) == 0 {
		return nil, fmt.Errorf("spectrogram %s: tracking data does not match %d time bins", id, rows)
	}

	set, err := r.annotations(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(set) > 0 {
		set = set.Shift(tmin)
		if s, err = s.Annotate(set.Labels(), set.Boxes()); err != nil {
			return nil, fmt.Errorf("spectrogram %s: %w", id, err)
		}
	}
	return s, nil
}

func (r *Reader) annotations(ctx context.Context, id string) (annotation.Set, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label, t_start, t_end, f_start, f_end FROM annotations
		WHERE spec_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load annotations of %s: %w", id, err)
	}
	defer rows.Close()

	var set annotation.Set
	for rows.Next() {
		var a annotation.Annotation
		if err := rows.Scan(&a.Label, &a.Box.TStart, &a.Box.TEnd, &a.Box.FStart, &a.Box.FEnd); err != nil {
			return nil, err
		}
		set = append(set, a)
	}
	return set, rows.Err()
}

// Extract cuts the regions annotated with label out of every spectrogram in
// group. It returns the extracted segments and, per spectrogram, what
// remains once they are removed.
func (r *Reader) Extract(group string, label int, opts spectrogram.ExtractOptions) ([]*spectrogram.Spectrogram, []*spectrogram.Spectrogram, error) {
	specs, err := r.Load(group)
	if err != nil {
		return nil, nil, err
	}

	var extracted, complements []*spectrogram.Spectrogram
	for _, s := range specs {
		segs, rest := s.Extract(label, opts)
		extracted = append(extracted, segs...)
		if rest != nil {
			complements = append(complements, rest)
		}
	}
	return extracted, complements, nil
}
